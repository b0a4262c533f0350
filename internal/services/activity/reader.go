package activity

import (
	"context"
	"encoding/json"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/broker/messages"
	"github.com/BearBump/CargoFlow/internal/cache"
	"github.com/pkg/errors"
)

const (
	defaultLimit = 20
	maxLimit     = DefaultFeedSize
)

type Reader struct {
	feed cache.Feed
	key  string
}

func NewReader(feed cache.Feed, key string) *Reader {
	if key == "" {
		key = DefaultFeedKey
	}
	return &Reader{feed: feed, key: key}
}

// Latest returns up to limit events, newest first. limit <= 0 means 20.
func (r *Reader) Latest(ctx context.Context, limit int) ([]messages.EntityEvent, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	raw, err := r.feed.Latest(ctx, r.key, int64(limit))
	if err != nil {
		return nil, apperr.Unexpected(errors.Wrap(err, "read activity feed"))
	}
	out := make([]messages.EntityEvent, 0, len(raw))
	for _, b := range raw {
		var ev messages.EntityEvent
		if json.Unmarshal(b, &ev) != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
