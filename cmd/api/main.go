package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"max.ks1230/expenses-api/internal/clients/amqp"
	"max.ks1230/expenses-api/internal/clients/cache"
	"max.ks1230/expenses-api/internal/clients/kafka"
	"max.ks1230/expenses-api/internal/config"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/logger"
	"max.ks1230/expenses-api/internal/model/auth"
	"max.ks1230/expenses-api/internal/model/expenses"
	"max.ks1230/expenses-api/internal/model/reports"
	"max.ks1230/expenses-api/internal/model/storage"
	"max.ks1230/expenses-api/internal/tracing"
	"max.ks1230/expenses-api/internal/transport/rest"
)

type publisher interface {
	Publish(ctx context.Context, event expense.Event) error
	io.Closer
}

func main() {
	defer logger.Sync()
	logger.Info("API init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config", zap.Error(err))
	}

	tracer, err := tracing.Init(conf.App().ServiceName(), conf.Tracing())
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer closeQuietly("tracer", tracer)

	db, err := storage.Open(conf.Storage())
	if err != nil {
		logger.Fatal("failed to init storage", zap.Error(err))
	}
	defer closeQuietly("storage", db)

	opts := make([]expenses.Option, 0, 2)

	events, err := newPublisher(conf)
	if err != nil {
		logger.Fatal("failed to init events publisher", zap.Error(err))
	}
	if events != nil {
		defer closeQuietly("events publisher", events)
		opts = append(opts, expenses.WithPublisher(events))
	}

	if conf.Memcached().Enabled() {
		mc, err := cache.NewMemcache(conf.Memcached())
		if err != nil {
			logger.Warn("memcached unavailable, summaries are not cached", zap.Error(err))
		} else {
			opts = append(opts, expenses.WithCache(mc))
		}
	}

	codec := auth.NewJWTCodec(conf.Auth())
	handler := rest.NewHandler(
		auth.NewService(db, auth.NewBcryptHasher(conf.Auth().BcryptCost()), codec),
		expenses.NewService(db, reports.NewGenerator(db), opts...),
		auth.NewIdentityExtractor(codec),
	)

	httpConf := conf.HTTP()
	servers := []*http.Server{{
		Addr:         httpConf.Address(),
		Handler:      handler.Router(httpConf.AllowedOrigins()),
		ReadTimeout:  httpConf.ReadTimeout(),
		WriteTimeout: httpConf.WriteTimeout(),
	}}
	if httpConf.MetricsAddress() != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{Addr: httpConf.MetricsAddress(), Handler: mux})
	}

	logger.Info("API init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), httpConf.ShutdownTimeout())
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err = g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
	logger.Info("API stopped")
}

func newPublisher(conf *config.Service) (publisher, error) {
	switch conf.Events().Driver() {
	case config.EventsKafka:
		return kafka.NewProducer(conf.Kafka())
	case config.EventsAMQP:
		return amqp.NewPublisher(conf.AMQP())
	}
	return nil, nil
}

func closeQuietly(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("failed to close "+name, zap.Error(err))
	}
}
