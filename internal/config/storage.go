package config

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type StorageConfig struct {
	DriverName string         `yaml:"driver"`
	Postgres   PostgresConfig `yaml:"postgres"`
	SQLitePath string         `yaml:"sqlite-path"`
	MaxConns   int            `yaml:"max-open-conns"`
}

func (s *StorageConfig) Driver() string {
	return s.DriverName
}

func (s *StorageConfig) Path() string {
	return s.SQLitePath
}

func (s *StorageConfig) MaxOpenConns() int {
	return s.MaxConns
}

func (s *StorageConfig) DSN() string {
	return s.Postgres.DSN()
}
