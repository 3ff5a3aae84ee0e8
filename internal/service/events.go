package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}

func accountActor(account *domain.Account) events.Actor {
	if account == nil {
		return events.Actor{}
	}
	id := account.ID
	return events.Actor{AccountID: &id, Role: account.Role}
}
