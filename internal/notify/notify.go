package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taichu-system/rental-management/internal/metrics"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

const EventPaymentCompleted = "payment.completed"

// Event is an opaque notification handed to the delivery sinks (receipts,
// email, messaging).
type Event struct {
	Type       string                 `json:"type"`
	TenantID   string                 `json:"tenant_id"`
	ResourceID string                 `json:"resource_id"`
	Payload    map[string]interface{} `json:"payload"`
}

// Sink delivers one event.
type Sink interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// Dispatcher fans an event out to every sink on a detached goroutine.
// Dispatch returns immediately; delivery results are only logged and
// counted.
type Dispatcher struct {
	sinks   []Sink
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{sinks: sinks, log: log, timeout: timeout}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	detached := tenancy.Detach(ctx)
	for _, sink := range d.sinks {
		d.wg.Add(1)
		go d.deliver(detached, sink, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, event Event) {
	defer d.wg.Done()
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := safeSend(ctx, sink, event)
	if err != nil {
		metrics.ObserveNotification("failed")
		d.log.Error("notification delivery failed",
			slog.String("sink", sink.Name()),
			slog.String("event", event.Type),
			slog.String("tenant_id", event.TenantID),
			slog.String("resource_id", event.ResourceID),
			slog.String("error", err.Error()),
		)
		return
	}
	metrics.ObserveNotification("sent")
}

func safeSend(ctx context.Context, sink Sink, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink %s panicked: %v", sink.Name(), r)
		}
	}()
	return sink.Send(ctx, event)
}

// Wait blocks until in-flight deliveries finish. Called on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// LogSink records events in the operational log. It stands in for the
// document and messaging integrations.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, event Event) error {
	s.log.InfoContext(ctx, "notification",
		slog.String("event", event.Type),
		slog.String("tenant_id", event.TenantID),
		slog.String("resource_id", event.ResourceID),
		slog.Any("payload", event.Payload),
	)
	return nil
}
