package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/worker/domain"
)

// processEvent stores one event. A storage failure is retried once through
// a requeue; when the redelivered copy fails too the event is dropped.
func (w *Worker) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	if w.eventTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.eventTimeout)
		defer cancel()
	}

	err := w.store.RecordEvent(ctx, msg.Event)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrEventAlreadyRecorded):
		w.logger.Debug("Duplicate event ignored", slog.String("event_id", msg.Event.ID))
		return err
	case msg.Delivery.Redelivered:
		return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, err)
	default:
		return domain.NewRetryableError(fmt.Errorf("failed to record event: %w", err))
	}
}
