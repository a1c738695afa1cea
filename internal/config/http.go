package config

import "time"

type HTTPConfig struct {
	Addr               string   `yaml:"addr"`
	MetricsAddr        string   `yaml:"metrics-addr"`
	ReadTimeoutSec     int64    `yaml:"read-timeout-seconds"`
	WriteTimeoutSec    int64    `yaml:"write-timeout-seconds"`
	ShutdownTimeoutSec int64    `yaml:"shutdown-timeout-seconds"`
	Origins            []string `yaml:"allowed-origins"`
}

func (s *HTTPConfig) Address() string {
	return s.Addr
}

func (s *HTTPConfig) MetricsAddress() string {
	return s.MetricsAddr
}

func (s *HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

func (s *HTTPConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

func (s *HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

func (s *HTTPConfig) AllowedOrigins() []string {
	return s.Origins
}
