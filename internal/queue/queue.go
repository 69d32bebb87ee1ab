package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mk-ui-dev/renovation-concierge/internal/jobs"
	"github.com/mk-ui-dev/renovation-concierge/internal/queue/redisclient"
	"github.com/redis/go-redis/v9"
)

// jobsKey is the single Redis list carrying notification jobs. LPUSH on
// produce, BRPOP on consume, so the list behaves as a FIFO.
const jobsKey = "concierge:jobs:notifications"

type Queue struct {
	client *redisclient.Client
}

func New(client *redisclient.Client) *Queue {
	return &Queue{client: client}
}

// Enqueue pushes a job. Callers treat failures as non-fatal: a lost
// notification must never fail the request that triggered it.
func (q *Queue) Enqueue(ctx context.Context, j jobs.Job) error {
	b, err := json.Marshal(j)

	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	return q.client.Raw().LPush(ctx, jobsKey, b).Err()
}

// Dequeue blocks up to the client's poll window for the next job. The
// boolean reports whether a job was returned; an empty poll is not an
// error.
func (q *Queue) Dequeue(ctx context.Context) (jobs.Job, bool, error) {
	res, err := q.client.Raw().BRPop(ctx, 2*time.Second, jobsKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return jobs.Job{}, false, nil
		}
		return jobs.Job{}, false, err
	}

	// BRPOP returns [key, value]
	if len(res) != 2 {
		return jobs.Job{}, false, fmt.Errorf("unexpected brpop reply of length %d", len(res))
	}

	var j jobs.Job

	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return jobs.Job{}, false, fmt.Errorf("decode job: %w", err)
	}

	return j, true, nil
}
