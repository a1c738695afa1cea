package config

const defaultServiceName = "expenses-api"

type AppConfig struct {
	Name string `yaml:"service-name"`
}

func (s *AppConfig) ServiceName() string {
	if s.Name == "" {
		return defaultServiceName
	}
	return s.Name
}
