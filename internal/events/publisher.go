package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Topics maps entity names (messages.EntityCargo, ...) to broker topics.
type Topics map[string]string

func DefaultTopics() Topics {
	return Topics{
		messages.EntityCargo:    "cargo-events",
		messages.EntityShipment: "shipment-events",
		messages.EntityDelivery: "delivery-events",
		messages.EntityRoute:    "route-events",
		messages.EntityVendor:   "vendor-events",
	}
}

// Publisher sends EntityEvents through a circuit breaker. While the breaker is
// open events are dropped immediately instead of waiting on a dead broker.
type Publisher struct {
	producer Producer
	topics   Topics
	breaker  *gobreaker.CircuitBreaker
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewPublisher(p Producer, topics Topics, m *metrics.Metrics) *Publisher {
	if topics == nil {
		topics = DefaultTopics()
	}
	pub := &Publisher{producer: p, topics: topics, metrics: m, now: time.Now}
	pub.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			m.SetBreakerState(name, int(to))
		},
	})
	return pub
}

func (p *Publisher) Topic(entity string) string {
	if t, ok := p.topics[entity]; ok {
		return t
	}
	return entity + "-events"
}

// Publish fills EventID and OccurredAt when empty and writes the event keyed by entity id.
func (p *Publisher) Publish(ctx context.Context, ev messages.EntityEvent) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = p.now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal entity event")
	}

	topic := p.Topic(ev.Entity)
	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.Publish(ctx, topic, []byte(strconv.FormatInt(ev.EntityID, 10)), b)
	})
	if err != nil {
		p.metrics.ObservePublish(topic, "error")
		return errors.Wrapf(err, "publish %s", topic)
	}
	p.metrics.ObservePublish(topic, "ok")
	return nil
}
