package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/credkeep/internal/account/usecase"
	"github.com/shandysiswandi/credkeep/internal/pkg/instrument"
	"github.com/shandysiswandi/credkeep/internal/pkg/messaging"
	"github.com/shandysiswandi/credkeep/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishAccountRegistered(ctx context.Context, msg usecase.AccountRegisteredEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishAccountRegistered")
	defer span.End()

	return m.publish(ctx, span, event.AccountRegisteredDestination, msg.UserID, event.AccountRegisteredMessage{
		UserID:   msg.UserID,
		Username: msg.Username,
		Role:     msg.Role.String(),
	})
}

func (m *Messaging) PublishAccountDeleted(ctx context.Context, msg usecase.AccountDeletedEvent) error {
	ctx, span := m.ins.Tracer("account.outbound.mq").Start(ctx, "PublishAccountDeleted")
	defer span.End()

	return m.publish(ctx, span, event.AccountDeletedDestination, msg.UserID, event.AccountDeletedMessage{
		UserID:    msg.UserID,
		Username:  msg.Username,
		DeletedBy: msg.DeletedBy,
	})
}

// publish keys every message by user id so per-account events stay ordered on
// partitioned brokers.
func (m *Messaging) publish(ctx context.Context, span trace.Span, destination string, userID int64, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, destination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(userID, 10)),
		Headers: []messaging.Header{{Key: event.HeaderCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
