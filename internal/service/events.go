// Package service implements LifeOS data portability: exporting a user's
// data graph to a snapshot document and importing documents back.
package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/metrics"
)

// Portability event types.
const (
	EventExportCompleted  = "export.completed"
	EventImportStarted    = "import.started"
	EventImportCheckpoint = "import.checkpoint"
	EventImportCompleted  = "import.completed"
	EventImportFailed     = "import.failed"
)

// Event is a progress notification for one user.
type Event struct {
	UserID string
	Type   string
	Data   any
}

// EventSink accepts events without blocking the caller.
type EventSink interface {
	Enqueue(e *Event)
}

// EventPublisher delivers an event to subscribers.
type EventPublisher interface {
	Publish(userID, eventType string, data any)
}

// EventWorker buffers events and publishes them from a single goroutine.
type EventWorker struct {
	publisher EventPublisher
	log       *logrus.Logger
	events    chan *Event
}

// NewEventWorker creates an EventWorker with the given queue capacity.
func NewEventWorker(publisher EventPublisher, log *logrus.Logger, queueSize int) *EventWorker {
	if queueSize <= 0 {
		queueSize = 256
	}

	return &EventWorker{
		publisher: publisher,
		log:       log,
		events:    make(chan *Event, queueSize),
	}
}

// Enqueue adds an event. Non-blocking; drops the event if the queue is full.
func (w *EventWorker) Enqueue(e *Event) {
	select {
	case w.events <- e:
		metrics.EventQueueDepth.Set(float64(len(w.events)))
	default:
		w.log.WithField("type", e.Type).Warn("event queue full, dropping event")
	}
}

// Run publishes events until the context is cancelled, then drains remaining events.
func (w *EventWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case e := <-w.events:
			w.publish(e)
		}
	}
}

func (w *EventWorker) drain() {
	for {
		select {
		case e := <-w.events:
			w.publish(e)
		default:
			return
		}
	}
}

func (w *EventWorker) publish(e *Event) {
	metrics.EventQueueDepth.Set(float64(len(w.events)))
	w.publisher.Publish(e.UserID, e.Type, e.Data)
}

// emit enqueues an event when a sink is configured.
func emit(sink EventSink, userID, eventType string, data any) {
	if sink == nil {
		return
	}

	sink.Enqueue(&Event{UserID: userID, Type: eventType, Data: data})
}
