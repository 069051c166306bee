package data

import (
	"context"
	"strconv"
	"time"

	"catalog/internal/biz"
	"catalog/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const defaultEventStream = "catalog:events"

type eventPublisher struct {
	data   *Data
	stream string
	maxLen int64
	log    *log.Helper
}

// NewEventPublisher creates a publisher appending catalog events to a Redis
// stream. It does nothing when Redis is not available.
func NewEventPublisher(data *Data, c *conf.Data, logger log.Logger) biz.EventPublisher {
	p := &eventPublisher{
		data:   data,
		stream: defaultEventStream,
		log:    log.NewHelper(logger),
	}
	if c.Redis != nil {
		if c.Redis.Stream != "" {
			p.stream = c.Redis.Stream
		}
		p.maxLen = c.Redis.StreamMaxLen
	}
	return p
}

func (p *eventPublisher) Publish(ctx context.Context, event *biz.CatalogEvent) error {
	if p.data.rdb == nil {
		return nil
	}

	id, err := p.data.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: eventValues(event),
	}).Result()
	if err != nil {
		return err
	}

	p.log.WithContext(ctx).Debugf("published %s for movie %s as %s", event.Type, event.MovieID, id)
	return nil
}

// eventValues flattens an event into stream fields.
func eventValues(event *biz.CatalogEvent) map[string]any {
	values := map[string]any{
		"type":        string(event.Type),
		"movie_id":    event.MovieID,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if event.Slug != "" {
		values["slug"] = event.Slug
	}
	if event.UserID != "" {
		values["user_id"] = event.UserID
	}
	if event.Rating != 0 {
		values["rating"] = strconv.Itoa(event.Rating)
	}
	return values
}
