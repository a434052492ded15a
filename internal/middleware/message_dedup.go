package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// MessageDeduper tracks processed gateway message ids. WhatsApp gateways
// redeliver webhooks until acknowledged, so duplicates are routine.
type MessageDeduper interface {
	Seen(ctx context.Context, messageID string) (bool, error)
}

type redisMessageDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisMessageDeduper) Seen(ctx context.Context, messageID string) (bool, error) {
	key := d.prefix + ":" + messageID
	ok, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

type memoryMessageDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryMessageDeduper(ttl time.Duration) *memoryMessageDeduper {
	now := time.Now()
	return &memoryMessageDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryMessageDeduper) Seen(_ context.Context, messageID string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[messageID]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[messageID] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for id, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, id)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// NewMessageDeduper builds a Redis deduper and falls back to in-memory
// on failure.
func NewMessageDeduper(addr, pass string, db int, ttl time.Duration) (MessageDeduper, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if addr == "" {
		return newMemoryMessageDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryMessageDeduper(ttl), err
	}

	return &redisMessageDeduper{
		client: client,
		prefix: "wa:msg",
		ttl:    ttl,
	}, nil
}

// MessageDedup drops duplicate gateway webhook deliveries by message_id.
func MessageDedup(deduper MessageDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil {
				return next(c)
			}

			rawBody, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(rawBody))
			if len(rawBody) == 0 {
				return next(c)
			}

			var payload struct {
				MessageID string `json:"message_id"`
			}
			if err := json.Unmarshal(rawBody, &payload); err != nil || payload.MessageID == "" {
				return next(c)
			}

			isDuplicate, err := deduper.Seen(req.Context(), payload.MessageID)
			if err != nil {
				return next(c)
			}
			if isDuplicate {
				// The gateway only needs a 2xx response to stop retries.
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}
