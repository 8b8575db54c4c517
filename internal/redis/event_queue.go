package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"

	"github.com/redis/go-redis/v9"
)

// EventQueue is a Redis list of event notifications waiting for webhook
// delivery. It doubles as the webhook notifier of the registrar.
type EventQueue struct {
	client *redis.Client
	key    string
}

func NewEventQueue(client *redis.Client, key string) *EventQueue {
	return &EventQueue{client: client, key: key}
}

func (q *EventQueue) Name() string { return "webhook" }

func (q *EventQueue) Notify(ctx context.Context, ev domain.AttendanceEvent) error {
	return q.Enqueue(ctx, domain.NewEventNotification(ev))
}

func (q *EventQueue) Enqueue(ctx context.Context, n domain.EventNotification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, b).Err()
}

// Pop blocks up to timeout for the oldest notification. An empty queue is
// e.ErrQueueEmpty.
func (q *EventQueue) Pop(ctx context.Context, timeout time.Duration) (domain.EventNotification, error) {
	var n domain.EventNotification

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return n, e.ErrQueueEmpty
		}
		return n, err
	}
	if len(res) < 2 {
		return n, e.ErrQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return n, fmt.Errorf("decode notification: %w", err)
	}
	return n, nil
}

func (q *EventQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
