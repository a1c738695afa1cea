package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerzap "github.com/uber/jaeger-client-go/log/zap"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/logger"
)

type config interface {
	Enabled() bool
	AgentHostPort() string
	SamplerParam() float64
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}

// Init installs the global tracer. With tracing disabled the global tracer
// stays the no-op one and spans cost nothing.
func Init(serviceName string, cfg config) (io.Closer, error) {
	if !cfg.Enabled() {
		opentracing.SetGlobalTracer(opentracing.NoopTracer{})
		return nopCloser{}, nil
	}

	jcfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeProbabilistic,
			Param: cfg.SamplerParam(),
		},
		Reporter: &jaegercfg.ReporterConfig{
			LocalAgentHostPort: cfg.AgentHostPort(),
		},
	}

	tracer, closer, err := jcfg.NewTracer(jaegercfg.Logger(jaegerzap.NewLogger(logger.L())))
	if err != nil {
		return nil, errors.Wrap(err, "init jaeger tracer")
	}
	opentracing.SetGlobalTracer(tracer)

	logger.Info("tracing enabled",
		zap.String("agent", cfg.AgentHostPort()),
		zap.Float64("sampler", cfg.SamplerParam()),
	)
	return closer, nil
}
