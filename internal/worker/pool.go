package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/worker/domain"
)

// spawnWorkerPool starts concurrency goroutines reading eventsChan
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned", slog.Int("worker_count", w.concurrency))
}

func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started", slog.String("worker_name", workerName))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-w.eventsChan:
			if !ok {
				return
			}
			w.settle(msg, w.processEvent(ctx, msg), workerName)
		}
	}
}

// settle acknowledges msg according to the processing result
func (w *Worker) settle(msg *domain.EventMessage, err error, workerName string) string {
	attrs := []any{
		slog.String("worker_name", workerName),
		slog.String("event_id", msg.Event.ID),
		slog.String("event_type", string(msg.Event.Type)),
	}

	if err == nil || errors.Is(err, domain.ErrEventAlreadyRecorded) {
		outcome := domain.OutcomeRecorded
		if err != nil {
			outcome = domain.OutcomeDuplicate
		}
		if ackErr := msg.Delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message", append(attrs, slog.Any("error", ackErr))...)
		}
		w.logger.Info("Event settled", append(attrs, slog.String("outcome", outcome))...)
		return outcome
	}

	requeue := w.shouldRequeue(err)
	outcome := domain.OutcomeDropped
	if requeue {
		outcome = domain.OutcomeRequeued
	}
	if nackErr := msg.Delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message", append(attrs, slog.Any("error", nackErr))...)
	}
	w.logger.Warn("Event not recorded", append(attrs, slog.String("outcome", outcome), slog.Any("error", err))...)
	return outcome
}

// shouldRequeue reports whether a failed event deserves another delivery
func (w *Worker) shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrMaxRetriesExceeded) || errors.Is(err, domain.ErrInvalidPayload) {
		return false
	}
	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
