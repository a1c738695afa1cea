package config

import "fmt"

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=%s"

type PostgresConfig struct {
	Hostname string `yaml:"host"`
	Db       string `yaml:"db"`
	User     string `yaml:"username"`
	Pswd     string `yaml:"password"`
	SSL      string `yaml:"sslmode"`
	RawDSN   string `yaml:"dsn"`
}

func (s *PostgresConfig) Host() string {
	return s.Hostname
}

func (s *PostgresConfig) Database() string {
	return s.Db
}

func (s *PostgresConfig) Username() string {
	return s.User
}

func (s *PostgresConfig) Password() string {
	return s.Pswd
}

// DSN prefers an explicit connection string over the discrete fields.
func (s *PostgresConfig) DSN() string {
	if s.RawDSN != "" {
		return s.RawDSN
	}
	ssl := s.SSL
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf(dsnTemplate, s.User, s.Pswd, s.Hostname, s.Db, ssl)
}
