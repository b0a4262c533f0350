package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/BearBump/CargoFlow/config"
	"github.com/BearBump/CargoFlow/internal/broker/kafka"
	"github.com/BearBump/CargoFlow/internal/cache"
	"github.com/BearBump/CargoFlow/internal/cache/rediscache"
	"github.com/BearBump/CargoFlow/internal/metrics"
	"github.com/BearBump/CargoFlow/internal/services/activity"
	"github.com/pkg/errors"
)

type eventConsumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, msg kafka.Message) error) error
	Close() error
}

type feedStore interface {
	cache.Feed
	Ping(ctx context.Context) error
	Close() error
}

type workerFactories struct {
	newConsumer func(cfg *config.Config) eventConsumer
	newFeed     func(cfg *config.Config) feedStore
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newConsumer: func(cfg *config.Config) eventConsumer {
			group := cfg.CargoFlow.KafkaConsumerGroup
			if group == "" {
				group = "cargo-worker"
			}
			// short redis blips are retried in place instead of restarting the worker
			return kafka.NewConsumer(cfg.Kafka.Brokers(), cfg.Kafka.Topics(), group).
				WithRetry(3, 200*time.Millisecond)
		},
		newFeed: func(cfg *config.Config) feedStore {
			return rediscache.New(cfg.Redis.Addr())
		},
	}
}

// RunCargoWorker projects entity events into the activity feed until ctx is
// done, the consumer fails or the ops server cannot serve.
func RunCargoWorker(ctx context.Context, cfg *config.Config, f workerFactories, httpOpts workerHTTPOpts) error {
	feedSize := cfg.CargoFlow.ActivityFeedSize
	if feedSize <= 0 {
		feedSize = activity.DefaultFeedSize
	}

	feed := f.newFeed(cfg)
	defer func() { _ = feed.Close() }()

	consumer := f.newConsumer(cfg)
	defer func() { _ = consumer.Close() }()

	m := metrics.New("cargo-worker")
	rec := activity.NewRecorder(feed, activity.DefaultFeedKey, feedSize, m)

	httpOpts.cfg = cfg
	httpOpts.recorder = rec
	httpOpts.feed = feed
	httpOpts.metrics = m

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, httpOpts)
	}()

	consumeErr := make(chan error, 1)
	go func() {
		slog.Info("kafka consumer started", "topics", cfg.Kafka.Topics(), "feed_size", feedSize)
		consumeErr <- consumer.Consume(ctx, rec.Handle)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-consumeErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("consumer stopped", "err", err)
		return err
	case err := <-httpErr:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			err = errors.New("ops http server stopped")
		}
		return err
	}
}
