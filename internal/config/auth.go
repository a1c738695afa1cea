package config

import "time"

const minSecretLength = 16

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt-secret"`
	TokenTTLMinutes int64  `yaml:"token-ttl-minutes"`
	Cost            int    `yaml:"bcrypt-cost"`
}

func (s *AuthConfig) Secret() []byte {
	return []byte(s.JWTSecret)
}

func (s *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

func (s *AuthConfig) BcryptCost() int {
	return s.Cost
}
