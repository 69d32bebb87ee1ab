package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mk-ui-dev/renovation-concierge/internal/jobs"
	"github.com/mk-ui-dev/renovation-concierge/internal/notifications"
	"github.com/mk-ui-dev/renovation-concierge/internal/observability"
)

// JobSource is the queue slice the worker consumes from.
type JobSource interface {
	Dequeue(ctx context.Context) (jobs.Job, bool, error)
	Enqueue(ctx context.Context, j jobs.Job) error
}

type Config struct {
	WorkerID string
}

// Worker drains the notification queue and hands each job to the
// notifier. Failed jobs are re-enqueued after a backoff until their
// MaxTries budget runs out, then dropped with a log line (there is no
// dead-letter store yet).
type Worker struct {
	cfg      Config
	queue    JobSource
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger
}

func New(cfg Config, queue JobSource, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		prom:     prom,
		log:      log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("worker started", "worker_id", w.cfg.WorkerID)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil
		default:
		}

		processed, err := w.ProcessOne(ctx)

		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			w.log.Error("dequeue failed", "err", err)
			// back off briefly so a dead redis doesn't spin the loop
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		_ = processed // empty polls just loop back into BRPOP
	}
}

// ProcessOne pulls and executes at most one job. The boolean reports
// whether a job was handled.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	j, ok, err := w.queue.Dequeue(ctx)

	if err != nil {
		return false, err
	}

	if !ok {
		return false, nil
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()

	execErr := w.execute(ctx, j)

	result := "done"

	if execErr != nil {
		result = w.handleFailure(ctx, j, execErr)
	}

	if w.prom != nil {
		w.prom.JobResults.WithLabelValues(string(j.Type), result).Inc()
		w.prom.JobDuration.WithLabelValues(string(j.Type), result).Observe(time.Since(start).Seconds())
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.NotifyDefectStatusPayload:
		return w.notifier.SendDefectStatus(ctx, notifications.DefectStatusInput{
			Email:    p.ClientEmail,
			Name:     p.ClientName,
			DefectID: p.DefectID,
			Title:    p.Title,
			Status:   p.Status,
		})

	case jobs.NotifyReportReadyPayload:
		return w.notifier.SendReportReady(ctx, notifications.ReportReadyInput{
			Email:    p.ClientEmail,
			Name:     p.ClientName,
			ReportID: p.ReportID,
			Title:    p.Title,
		})

	default:
		return jobs.ErrInvalidJobType
	}
}

// handleFailure decides between retry and drop, returning the result
// label for metrics.
func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, execErr error) string {
	// undecodable jobs can never succeed; retrying them is pure noise
	if errors.Is(execErr, jobs.ErrInvalidJobType) || errors.Is(execErr, jobs.ErrInvalidJobPayload) {
		w.log.Error("dropping undecodable job", "job_id", j.ID, "type", j.Type, "err", execErr)
		return "failed"
	}

	j.Attempts++

	if j.Attempts >= j.MaxTries {
		w.log.Error("job exhausted retries", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "err", execErr)
		return "failed"
	}

	delay := ExponentialBackoff(j.Attempts)

	w.log.Warn("job failed, retrying", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "delay", delay, "err", execErr)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		// requeue immediately on shutdown so the job is not lost
	}

	if err := w.queue.Enqueue(context.WithoutCancel(ctx), j); err != nil {
		w.log.Error("requeue failed, job lost", "job_id", j.ID, "err", err)
		return "failed"
	}

	return "retry"
}
