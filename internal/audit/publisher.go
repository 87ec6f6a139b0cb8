package audit

import (
	"context"
	"log/slog"

	ua "github.com/mssola/useragent"

	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

// Sink receives a copy of every event, best effort.
type Sink interface {
	Publish(ctx context.Context, event Event)
}

// Publisher records audit events. Persistence goes through the store;
// optional sinks (Kafka) get a best-effort copy.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

func NewPublisher(store Store, sink Sink, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{store: store, sink: sink, logger: logger}
}

// Emit fills submitter context from the request and records the event.
// Audit failures are logged, never propagated to the caller.
func (p *Publisher) Emit(ctx context.Context, userID id.UserID, action string, metadata map[string]string) {
	event := Event{
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    action,
		Metadata:  metadata,
		IP:        requestcontext.ClientIP(ctx),
	}

	if raw := requestcontext.UserAgent(ctx); raw != "" {
		parsed := ua.New(raw)
		name, version := parsed.Browser()
		event.Browser = name + " " + version
		event.OS = parsed.OS()
		event.Mobile = parsed.Mobile()
	}

	if err := p.store.Append(ctx, event); err != nil {
		p.logger.Error("append audit event", "error", err, "action", action, "user_id", userID)
	}
	if p.sink != nil {
		p.sink.Publish(ctx, event)
	}
}

// List returns the recorded events for a user.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}
