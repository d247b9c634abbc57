package audit

import (
	"context"
	"log/slog"
	"time"

	"veriflow/internal/platform/middleware"
)

// Publisher fans audit events out to one or more sinks. Emission is
// best-effort: a failing sink is logged and must never block or fail
// the domain transition that produced the event.
type Publisher struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.RequestID == "" {
		event.RequestID = middleware.GetRequestID(ctx)
	}

	for _, sink := range p.sinks {
		if err := sink.Append(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "failed to append audit event",
				"action", event.Action,
				"subject_id", event.SubjectID,
				"error", err)
		}
	}
}
