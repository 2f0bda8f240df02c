package service

import (
	"context"
	"encoding/json"

	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/pkg/mailer"
	"legal-aid-be/internal/repository/specification"
	"legal-aid-be/internal/repository/unitofwork"
	"legal-aid-be/pkg/events"
	pkgNats "legal-aid-be/pkg/nats"
	noticeEvents "legal-aid-be/pkg/notice/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const auditDurableName = "legal-aid-audit"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EventSubscriber is the subset of the NATS subscriber the audit trail needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pkgNats.EventHandler) error
}

type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	audit        EventSubscriber
	logger       logger.ILogger
}

// NewConsumerService builds the background worker. audit may be nil when
// NATS is not reachable.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	audit EventSubscriber,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		uowFactory:   uowFactory,
		emailService: emailService,
		audit:        audit,
		logger:       logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	if cs.audit != nil {
		if err := cs.audit.Subscribe(ctx, pkgNats.SubjectPrefix+">", auditDurableName, cs.auditEvent); err != nil {
			cs.logger.Warn("CONSUMER", "Audit subscription unavailable", map[string]interface{}{"error": err.Error()})
		}
	}

	return nil
}

// processMessage mails the saved reply to its owner. Only lookup failures
// are retried; a missing user or activity is acknowledged and dropped.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload noticeEvents.ReplyFinalizedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: payload.UserID})
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to load user", map[string]interface{}{
			"user_id": payload.UserID.String(),
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}
	if user == nil {
		cs.logger.Warn("CONSUMER", "User not found, dropping message", map[string]interface{}{"user_id": payload.UserID.String()})
		msg.Ack()
		return
	}

	activity, err := uow.ActivityRepository().FindOne(ctx,
		specification.ByID{ID: payload.ActivityID},
		specification.UserOwnedBy{UserID: payload.UserID},
	)
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to load activity", map[string]interface{}{
			"activity_id": payload.ActivityID.String(),
			"error":       err.Error(),
		})
		msg.Nack()
		return
	}
	if activity == nil || activity.ReplyText == "" {
		cs.logger.Warn("CONSUMER", "No saved reply, dropping message", map[string]interface{}{"activity_id": payload.ActivityID.String()})
		msg.Ack()
		return
	}

	if err := cs.emailService.SendReplyCopy(user.Email, user.FullName, activity.SourceFileName, activity.ReplyText); err != nil {
		// The reply is already saved; a lost copy is logged, not retried.
		cs.logger.Error("CONSUMER", "Failed to send reply copy", map[string]interface{}{
			"activity_id": activity.Id.String(),
			"error":       err.Error(),
		})
		msg.Ack()
		return
	}

	cs.logger.Info("CONSUMER", "Reply copy sent", map[string]interface{}{
		"activity_id": activity.Id.String(),
		"user_id":     user.Id.String(),
	})
	msg.Ack()
}

func (cs *consumerService) auditEvent(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{"occurred_at": event.Timestamp()}
	for k, v := range event.Payload() {
		details[k] = v
	}
	cs.logger.Info("AUDIT", event.EventType(), details)
	return nil
}
