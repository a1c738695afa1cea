package config

type TracingConfig struct {
	On          bool    `yaml:"enabled"`
	Agent       string  `yaml:"agent-host-port"`
	SampleRatio float64 `yaml:"sample-ratio"`
}

func (s *TracingConfig) Enabled() bool {
	return s.On
}

func (s *TracingConfig) AgentHostPort() string {
	return s.Agent
}

func (s *TracingConfig) SamplerParam() float64 {
	return s.SampleRatio
}
