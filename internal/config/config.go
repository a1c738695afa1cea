package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFile      = "data/config.yaml"
	configFileEnv   = "CONFIG_FILE"
	defaultTTL      = 60
	defaultCost     = 10
	defaultMaxConns = 10
)

type config struct {
	App       AppConfig       `yaml:"app"`
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Events    EventsConfig    `yaml:"events"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	AMQP      AMQPConfig      `yaml:"amqp"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// Service is the immutable configuration handed to every component at
// construction time. Nothing reads the environment after New returns.
type Service struct {
	config config
}

// New loads .env (if any), the YAML file and environment overrides.
func New() (*Service, error) {
	_ = godotenv.Load()

	path := os.Getenv(configFileEnv)
	if path == "" {
		path = configFile
	}

	rawYAML, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	s, err := Parse(rawYAML)
	if err != nil {
		return nil, err
	}
	s.applyEnv(os.LookupEnv)

	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse builds a Service from raw YAML and fills in defaults. It does not
// consult the environment.
func Parse(rawYAML []byte) (*Service, error) {
	s := &Service{}
	if err := yaml.Unmarshal(rawYAML, &s.config); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	s.setDefaults()
	return s, nil
}

func (s *Service) setDefaults() {
	c := &s.config
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8000"
	}
	if c.HTTP.ReadTimeoutSec == 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec == 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownTimeoutSec == 0 {
		c.HTTP.ShutdownTimeoutSec = 30
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = defaultTTL
	}
	if c.Auth.Cost == 0 {
		c.Auth.Cost = defaultCost
	}
	if c.Storage.DriverName == "" {
		c.Storage.DriverName = DriverPostgres
	}
	if c.Storage.MaxConns == 0 {
		c.Storage.MaxConns = defaultMaxConns
	}
	if c.Memcached.TTLSec == 0 {
		c.Memcached.TTLSec = 300
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "expense-events"
	}
	if c.AMQP.Exch == "" {
		c.AMQP.Exch = "expenses"
	}
	if c.AMQP.QueueNm == "" {
		c.AMQP.QueueNm = "expense_events"
	}
}

type lookupFunc func(key string) (string, bool)

func (s *Service) applyEnv(lookup lookupFunc) {
	c := &s.config
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.Split(v, ",")
		}
	}

	str("HTTP_ADDR", &c.HTTP.Addr)
	str("METRICS_ADDR", &c.HTTP.MetricsAddr)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	if v, ok := lookup("JWT_EXPIRES_MIN"); ok {
		if minutes, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Auth.TokenTTLMinutes = minutes
		}
	}
	str("STORAGE_DRIVER", &c.Storage.DriverName)
	str("DATABASE_DSN", &c.Storage.Postgres.RawDSN)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	list("MEMCACHED_HOSTS", &c.Memcached.NodeHosts)
	str("EVENTS_DRIVER", &c.Events.DriverName)
	list("KAFKA_BROKERS", &c.Kafka.BrokerList)
	str("AMQP_URL", &c.AMQP.Addr)
	str("JAEGER_AGENT_HOST_PORT", &c.Tracing.Agent)
}

// Validate reports every problem at once rather than the first one.
func (s *Service) Validate() error {
	c := &s.config
	var result *multierror.Error

	if len(c.Auth.JWTSecret) < minSecretLength {
		result = multierror.Append(result,
			errors.Errorf("auth.jwt-secret must be at least %d characters", minSecretLength))
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		result = multierror.Append(result,
			errors.Errorf("auth.token-ttl-minutes must be positive, got %d", c.Auth.TokenTTLMinutes))
	}
	if c.Auth.Cost < 4 || c.Auth.Cost > 31 {
		result = multierror.Append(result,
			errors.Errorf("auth.bcrypt-cost must be between 4 and 31, got %d", c.Auth.Cost))
	}

	switch c.Storage.DriverName {
	case DriverPostgres:
		if c.Storage.Postgres.RawDSN == "" && c.Storage.Postgres.Hostname == "" {
			result = multierror.Append(result, errors.New("storage.postgres needs either dsn or host"))
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			result = multierror.Append(result, errors.New("storage.sqlite-path is required for the sqlite driver"))
		}
	case DriverMemory:
	default:
		result = multierror.Append(result, errors.Errorf("unknown storage driver %q", c.Storage.DriverName))
	}

	switch c.Events.Driver() {
	case EventsNone:
	case EventsKafka:
		if len(c.Kafka.BrokerList) == 0 {
			result = multierror.Append(result, errors.New("kafka.brokers is required for the kafka events driver"))
		}
	case EventsAMQP:
		if !strings.HasPrefix(c.AMQP.Addr, "amqp://") && !strings.HasPrefix(c.AMQP.Addr, "amqps://") {
			result = multierror.Append(result, errors.Errorf("invalid amqp.url %q", c.AMQP.Addr))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unknown events driver %q", c.Events.DriverName))
	}

	if c.Tracing.On && c.Tracing.Agent == "" {
		result = multierror.Append(result, errors.New("tracing.agent-host-port is required when tracing is enabled"))
	}

	return result.ErrorOrNil()
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) HTTP() *HTTPConfig {
	return &s.config.HTTP
}

func (s *Service) Auth() *AuthConfig {
	return &s.config.Auth
}

func (s *Service) Storage() *StorageConfig {
	return &s.config.Storage
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Events() *EventsConfig {
	return &s.config.Events
}

func (s *Service) Kafka() *KafkaConfig {
	return &s.config.Kafka
}

func (s *Service) AMQP() *AMQPConfig {
	return &s.config.AMQP
}

func (s *Service) Tracing() *TracingConfig {
	return &s.config.Tracing
}
