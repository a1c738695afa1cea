package config

const (
	EventsNone  = "none"
	EventsKafka = "kafka"
	EventsAMQP  = "amqp"
)

type EventsConfig struct {
	DriverName string `yaml:"driver"`
}

func (s *EventsConfig) Driver() string {
	if s.DriverName == "" {
		return EventsNone
	}
	return s.DriverName
}
