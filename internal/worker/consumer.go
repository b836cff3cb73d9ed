package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/worker/domain"
)

// setupConsumer applies QoS and starts consuming
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	if err := w.source.Qos(w.prefetchCount); err != nil {
		return nil, err
	}

	deliveries, err := w.source.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.String("queue", w.queueName),
		slog.Int("prefetch_count", w.prefetchCount),
	)
	return deliveries, nil
}

// decodeEvent parses and validates a delivery body
func decodeEvent(body []byte) (events.Event, error) {
	var event events.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return events.Event{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if err := event.Validate(); err != nil {
		return events.Event{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return event, nil
}

// startMessageDispatcher decodes deliveries and hands them to the pool.
// Malformed messages are rejected here without requeue.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started", slog.String("worker_id", w.workerID))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			event, err := decodeEvent(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping malformed event",
					slog.String("message_id", delivery.MessageId),
					slog.Any("error", err),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message", slog.Any("error", nackErr))
				}
				continue
			}

			select {
			case w.eventsChan <- &domain.EventMessage{Event: event, Delivery: delivery}:
				w.logger.Debug("Event dispatched to worker pool",
					slog.String("event_id", event.ID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown", slog.Any("error", nackErr))
				}
				w.logger.Info("Message dispatcher stopped while dispatching")
				return
			}
		}
	}
}
