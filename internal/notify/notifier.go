package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/domain"
)

// Sink receives committed board events.
type Sink interface {
	PublishBoardEvent(ctx context.Context, ev domain.BoardEvent) error
}

// SinkRegistry lists the sinks a Notifier dispatches to.
type SinkRegistry interface {
	Sinks() []NamedSink
}

// Notifier dispatches every board event to all registered sinks.
type Notifier struct {
	sinks SinkRegistry
}

// New creates a Notifier over the given registry.
func New(sinks SinkRegistry) *Notifier {
	return &Notifier{sinks: sinks}
}

// PublishBoardEvent sends ev to every sink. One failing sink does not stop
// the rest; all failures are joined into the returned error.
func (n *Notifier) PublishBoardEvent(ctx context.Context, ev domain.BoardEvent) error {
	var errs []error
	for _, s := range n.sinks.Sinks() {
		if err := s.Sink.PublishBoardEvent(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("sink %q: %w", s.Name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify.Notifier.PublishBoardEvent: %w", errors.Join(errs...))
	}
	return nil
}

// LogSink writes board events to the global zerolog logger.
type LogSink struct{}

func (LogSink) PublishBoardEvent(_ context.Context, ev domain.BoardEvent) error {
	e := log.Info().Str("event", string(ev.Type)).Str("task_id", ev.TaskID.String())
	if ev.From != "" {
		e = e.Str("from", string(ev.From))
	}
	if ev.Task != nil {
		e = e.Str("status", string(ev.Task.Status))
	}
	e.Msg("board changed")
	return nil
}
