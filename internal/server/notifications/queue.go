package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/redis/go-redis/v9"
)

const popTimeout = time.Second

type job struct {
	Intent   Intent `json:"intent"`
	Attempts int    `json:"attempts"`
}

// RedisQueue is a Sender backed by a Redis list. Send pushes to the head and
// Run pops from the tail, so jobs are handled in arrival order.
type RedisQueue struct {
	client      redis.UniversalClient
	key         string
	maxAttempts int
	logger      logging.Logger
}

func NewRedisQueue(client redis.UniversalClient, key string, maxAttempts int, logger logging.Logger) *RedisQueue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RedisQueue{client: client, key: key, maxAttempts: maxAttempts, logger: logger}
}

func (q *RedisQueue) Send(ctx context.Context, intent Intent) error {
	return q.push(ctx, job{Intent: intent})
}

func (q *RedisQueue) push(ctx context.Context, j job) error {
	payload, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// Len returns the number of queued jobs.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Run hands queued intents to d until ctx is done. A failed delivery is
// requeued until it has been tried maxAttempts times, then dropped.
func (q *RedisQueue) Run(ctx context.Context, d Deliverer) error {
	for {
		if _, err := q.processOne(ctx, d, popTimeout); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.logger.Error(ctx, "notification queue error", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(popTimeout):
			}
		}
	}
}

// processOne waits up to timeout for a job and delivers it. It reports
// whether a job was taken.
func (q *RedisQueue) processOne(ctx context.Context, d Deliverer, timeout time.Duration) (bool, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var j job
	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		q.logger.Warn(ctx, "dropping malformed notification", "error", err)
		return true, nil
	}

	j.Attempts++
	if err := d.Deliver(ctx, j.Intent); err != nil {
		if j.Attempts >= q.maxAttempts {
			q.logger.Warn(ctx, "notification dropped",
				"template", j.Intent.Template, "attempts", j.Attempts, "error", err)
			return true, nil
		}
		q.logger.Warn(ctx, "notification delivery failed, requeued",
			"template", j.Intent.Template, "attempts", j.Attempts, "error", err)
		return true, q.push(ctx, j)
	}

	q.logger.Debug(ctx, "notification delivered", "template", j.Intent.Template)
	return true, nil
}
