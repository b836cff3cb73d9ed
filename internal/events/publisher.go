package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/shared/rabbitmq"
)

// Publisher delivers events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Broker is the part of the RabbitMQ client used for publishing
type Broker interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

// RabbitPublisher sends events as JSON routed by their type
type RabbitPublisher struct {
	broker Broker
}

// NewRabbitPublisher creates a publisher on top of broker
func NewRabbitPublisher(broker Broker) *RabbitPublisher {
	return &RabbitPublisher{broker: broker}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return p.broker.PublishWithRetry(ctx, rabbitmq.Message{
		RoutingKey:  string(event.Type),
		MessageID:   event.ID,
		Type:        string(event.Type),
		ContentType: "application/json",
		Body:        body,
		Timestamp:   event.OccurredAt,
	})
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that writes events to logger
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.Info("Portal event",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.Int("user_id", event.UserID),
		slog.Int("job_id", event.JobID),
	)
	return nil
}

// Emitter publishes events in the background so the request that caused
// them never waits on the broker. Failures are logged and dropped.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewEmitter creates an emitter; each publish gets timeout to complete
func NewEmitter(publisher Publisher, logger *slog.Logger, timeout time.Duration) *Emitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Emitter{publisher: publisher, logger: logger, timeout: timeout, now: time.Now}
}

// NewEvent creates an event stamped with the emitter's clock
func (e *Emitter) NewEvent(t Type) Event {
	return New(t, e.now())
}

// Emit publishes event asynchronously. It is a no-op after Close.
func (e *Emitter) Emit(event Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.logger.Warn("Event dropped after shutdown",
			slog.String("event_type", string(event.Type)),
		)
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()

		if err := e.publisher.Publish(ctx, event); err != nil {
			e.logger.Error("Failed to publish event",
				slog.String("event_id", event.ID),
				slog.String("event_type", string(event.Type)),
				slog.Any("error", err),
			)
		}
	}()
}

// Close stops accepting events and waits for in-flight publishes
func (e *Emitter) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
}
