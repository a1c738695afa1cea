package config

import "time"

type MemcachedConfig struct {
	NodeHosts []string `yaml:"hosts"`
	TTLSec    int32    `yaml:"ttl-seconds"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}

func (s *MemcachedConfig) Enabled() bool {
	return len(s.NodeHosts) > 0
}

func (s *MemcachedConfig) TTL() time.Duration {
	return time.Duration(s.TTLSec) * time.Second
}
