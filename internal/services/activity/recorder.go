// Package activity projects entity events from the broker into a capped
// Redis list and reads them back for the dashboard.
package activity

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/CargoFlow/internal/broker/kafka"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/cache"
	"github.com/BearBump/CargoFlow/internal/metrics"
	"github.com/pkg/errors"
)

const (
	DefaultFeedKey  = "activity:feed"
	DefaultFeedSize = 200
)

// Recorder is a kafka.Consumer handler.
type Recorder struct {
	feed    cache.Feed
	key     string
	size    int64
	metrics *metrics.Metrics

	startedAtUnixNano int64
	lastEventUnixNano atomic.Int64
	consumed          atomic.Int64
	recorded          atomic.Int64
	skipped           atomic.Int64
	lastErrorMu       sync.Mutex
	lastError         string
}

func NewRecorder(feed cache.Feed, key string, size int, m *metrics.Metrics) *Recorder {
	if key == "" {
		key = DefaultFeedKey
	}
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Recorder{
		feed:              feed,
		key:               key,
		size:              int64(size),
		metrics:           m,
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

// Handle stores one event. Undecodable or incomplete messages are skipped and
// reported as handled; only a feed write failure is returned, so the message
// stays uncommitted.
func (r *Recorder) Handle(ctx context.Context, msg kafka.Message) error {
	r.consumed.Add(1)

	var ev messages.EntityEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		r.skip(msg, "decode", err)
		return nil
	}
	if ev.Entity == "" || ev.Action == "" {
		r.skip(msg, "incomplete", errors.New("entity and action are required"))
		return nil
	}

	b, err := json.Marshal(ev)
	if err != nil {
		r.skip(msg, "encode", err)
		return nil
	}
	if err := r.feed.PushCapped(ctx, r.key, b, r.size); err != nil {
		r.setLastError(err)
		r.metrics.ObserveActivity(ev.Entity, "error")
		return errors.Wrap(err, "record activity")
	}

	r.recorded.Add(1)
	r.lastEventUnixNano.Store(time.Now().UTC().UnixNano())
	r.metrics.ObserveActivity(ev.Entity, "recorded")
	return nil
}

func (r *Recorder) skip(msg kafka.Message, reason string, err error) {
	r.skipped.Add(1)
	r.setLastError(err)
	r.metrics.ObserveActivity("unknown", "skipped")
	slog.Warn("skip entity event", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset,
		"key", string(msg.Key), "reason", reason, "error", err.Error())
}

func (r *Recorder) setLastError(err error) {
	r.lastErrorMu.Lock()
	r.lastError = err.Error()
	r.lastErrorMu.Unlock()
}

type Stats struct {
	StartedAt   time.Time  `json:"startedAt"`
	LastEventAt *time.Time `json:"lastEventAt,omitempty"`
	Consumed    int64      `json:"consumed"`
	Recorded    int64      `json:"recorded"`
	Skipped     int64      `json:"skipped"`
	LastError   string     `json:"lastError,omitempty"`
}

func (r *Recorder) Stats() Stats {
	st := Stats{
		StartedAt: time.Unix(0, r.startedAtUnixNano).UTC(),
		Consumed:  r.consumed.Load(),
		Recorded:  r.recorded.Load(),
		Skipped:   r.skipped.Load(),
	}
	if n := r.lastEventUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastEventAt = &t
	}
	r.lastErrorMu.Lock()
	st.LastError = r.lastError
	r.lastErrorMu.Unlock()
	return st
}
