package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is what handlers see; the kafka-go type stays inside this package.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

// Consumer delivers messages one at a time and commits the offset only after
// the handler accepted the message.
type Consumer struct {
	r       messageReader
	retries int
	backoff time.Duration
}

// NewConsumer subscribes to topics. A consumer group is required for more than one topic.
func NewConsumer(brokers []string, topics []string, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}
	if groupID != "" {
		cfg.GroupTopics = topics
	} else if len(topics) > 0 {
		cfg.Topic = topics[0]
	}
	return newConsumerWithReader(kafka.NewReader(cfg))
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{r: r}
}

// WithRetry redelivers a message to the handler up to retries more times,
// doubling backoff between attempts, before Consume gives up.
func (c *Consumer) WithRetry(retries int, backoff time.Duration) *Consumer {
	c.retries = max(retries, 0)
	c.backoff = backoff
	return c
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, msg Message) error) error {
	for {
		km, err := c.r.FetchMessage(ctx)
		if err != nil {
			return errors.Wrap(err, "fetch message")
		}
		msg := Message{Topic: km.Topic, Partition: km.Partition, Offset: km.Offset, Key: km.Key, Value: km.Value}
		if err := c.handle(ctx, handler, msg); err != nil {
			// uncommitted: the group redelivers it after restart
			return errors.Wrapf(err, "handle %s/%d@%d", msg.Topic, msg.Partition, msg.Offset)
		}
		if err := c.r.CommitMessages(ctx, km); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, handler func(ctx context.Context, msg Message) error, msg Message) error {
	wait := c.backoff
	for attempt := 0; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil || attempt >= c.retries {
			return err
		}
		slog.Warn("handler failed, retrying", "topic", msg.Topic, "offset", msg.Offset, "attempt", attempt+1, "err", err)
		select {
		case <-ctx.Done():
			return errors.WithMessage(err, "retry aborted")
		case <-time.After(wait):
		}
		wait *= 2
	}
}
