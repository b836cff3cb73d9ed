// Package worker consumes portal activity events from RabbitMQ and records
// them in PostgreSQL using a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/worker/domain"
)

// DeliverySource is the RabbitMQ side of the worker
type DeliverySource interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// EventStore persists events
type EventStore interface {
	RecordEvent(ctx context.Context, event events.Event) error
	CountByType(ctx context.Context, since time.Time) (map[string]int, error)
}

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	Source         DeliverySource
	Store          EventStore
	WorkerID       string
	QueueName      string
	Concurrency    int
	PrefetchCount  int
	EventTimeout   time.Duration
	ReportInterval time.Duration
}

// Worker records events delivered by RabbitMQ
type Worker struct {
	logger         *slog.Logger
	source         DeliverySource
	store          EventStore
	workerID       string
	queueName      string
	concurrency    int
	prefetchCount  int
	eventTimeout   time.Duration
	reportInterval time.Duration

	eventsChan chan *domain.EventMessage
	wg         sync.WaitGroup
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := max(cfg.Concurrency, 1)
	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}
	return &Worker{
		logger:         cfg.Logger,
		source:         cfg.Source,
		store:          cfg.Store,
		workerID:       cfg.WorkerID,
		queueName:      cfg.QueueName,
		concurrency:    concurrency,
		prefetchCount:  prefetch,
		eventTimeout:   cfg.EventTimeout,
		reportInterval: cfg.ReportInterval,
		eventsChan:     make(chan *domain.EventMessage, concurrency),
		stopChan:       make(chan struct{}),
	}
}

// Start consumes until ctx is canceled or the delivery channel closes
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("event_timeout", w.eventTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to set up consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	if w.reportInterval > 0 {
		w.wg.Add(1)
		go w.reportLoop(ctx)
	}

	w.startMessageDispatcher(ctx, deliveries)
	return nil
}

// Stop signals the pool to finish and waits for it
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}

// reportLoop logs how many events of each type were recorded per interval
func (w *Worker) reportLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case tick := <-ticker.C:
			counts, err := w.store.CountByType(ctx, tick.Add(-w.reportInterval))
			if err != nil {
				w.logger.Warn("Failed to count recorded events", slog.Any("error", err))
				continue
			}
			attrs := make([]any, 0, len(counts)+1)
			attrs = append(attrs, slog.Duration("window", w.reportInterval))
			for eventType, total := range counts {
				attrs = append(attrs, slog.Int(eventType, total))
			}
			w.logger.Info("Portal activity", attrs...)
		}
	}
}
