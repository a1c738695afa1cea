package config

type AMQPConfig struct {
	Addr    string `yaml:"url"`
	Exch    string `yaml:"exchange"`
	QueueNm string `yaml:"queue"`
}

func (s *AMQPConfig) URL() string {
	return s.Addr
}

func (s *AMQPConfig) Exchange() string {
	return s.Exch
}

func (s *AMQPConfig) Queue() string {
	return s.QueueNm
}
