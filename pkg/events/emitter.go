// Package events owns the per-request event stream a review run reports its
// progress through. There is no cross-request subscriber here and nothing to
// persist — the channel's only reader is the single caller of Orchestrate —
// so this is a much smaller surface than a pub/sub system: one bounded
// channel, a non-blocking put for routine status/progress updates, and a
// blocking send for the terminal event.
package events

import (
	"log/slog"
	"sync"

	"github.com/rostilos/codecrow/pkg/review"
)

// DefaultQueueSize bounds the event channel. Status/progress events are
// dropped once the queue is full rather than stalling the stage that's
// trying to report them; a slow or absent consumer never blocks review
// work.
const DefaultQueueSize = 64

// Emitter owns a single request's event channel and the typed Publish*
// methods stages call into, mirroring the teacher's typed-method-per-event-
// kind publisher shape with the database/NOTIFY layer removed.
type Emitter struct {
	ch     chan review.Event
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// New creates an Emitter with the default queue size.
func New(logger *slog.Logger) *Emitter {
	return NewWithQueueSize(logger, DefaultQueueSize)
}

// NewWithQueueSize creates an Emitter with a caller-chosen queue size,
// mainly so tests can exercise the drop-on-full behavior with a small
// buffer.
func NewWithQueueSize(logger *slog.Logger, queueSize int) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		ch:     make(chan review.Event, queueSize),
		logger: logger,
	}
}

// Events returns the read side of the event channel for the caller of
// Orchestrate to range over.
func (e *Emitter) Events() <-chan review.Event {
	return e.ch
}

// Status emits a stage-boundary status event. Non-blocking: dropped and
// logged if the queue is full.
func (e *Emitter) Status(state, message string) {
	e.emitNonBlocking(review.Event{Type: review.EventStatus, State: state, Message: message})
}

// Progress emits an intra-stage progress percentage. Non-blocking: dropped
// and logged if the queue is full.
func (e *Emitter) Progress(state string, percent int, message string) {
	e.emitNonBlocking(review.Event{Type: review.EventProgress, State: state, Percent: percent, Message: message})
}

// Final emits the terminal success event carrying the completed result.
// Blocking: guarantees delivery before the request's goroutine returns, and
// closes the channel once sent since no further event may follow it.
func (e *Emitter) Final(result *review.Result) {
	e.emitBlockingAndClose(review.Event{Type: review.EventFinal, State: review.StateDone, Result: result})
}

// Error emits the terminal failure event. Blocking and closes the channel,
// same as Final.
func (e *Emitter) Error(message string) {
	e.emitBlockingAndClose(review.Event{Type: review.EventError, Message: message})
}

func (e *Emitter) emitNonBlocking(ev review.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.ch <- ev:
	default:
		e.logger.Warn("dropping event, queue full", "type", ev.Type, "state", ev.State)
	}
}

func (e *Emitter) emitBlockingAndClose(ev review.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.ch <- ev
	close(e.ch)
	e.closed = true
}
