package events

import (
	"context"
	"encoding/json"

	"legal-aid-be/internal/pkg/logger"
	pkgEvents "legal-aid-be/pkg/events"
	"legal-aid-be/pkg/notice"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Bus is the subset of the NATS publisher used here.
type Bus interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// ReplyFinalizedMessage is the job payload put on the in-process queue
// when a reply is saved for the first time.
type ReplyFinalizedMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	ActivityID uuid.UUID `json:"activity_id"`
}

// NatsPublisher implements notice.EventPublisher. Both the bus and the
// queue are optional.
type NatsPublisher struct {
	bus    Bus
	queue  message.Publisher
	topic  string
	logger logger.ILogger
}

func NewNatsPublisher(bus Bus, queue message.Publisher, topic string, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		bus:    bus,
		queue:  queue,
		topic:  topic,
		logger: logger,
	}
}

func (p *NatsPublisher) PublishNoticeUploaded(ctx context.Context, entry *notice.ActivityEntry) {
	p.publish(ctx, pkgEvents.New(pkgEvents.NoticeUploaded, map[string]interface{}{
		"user_id":     entry.UserID,
		"activity_id": entry.ID,
		"file_name":   entry.SourceFileName,
		"page_count":  entry.PageCount,
		"entity_type": "activity",
		"entity_id":   entry.ID.String(),
	}))
}

func (p *NatsPublisher) PublishReplySaved(ctx context.Context, entry *notice.ActivityEntry) {
	isSummon := false
	if entry.IsSummon != nil {
		isSummon = *entry.IsSummon
	}
	p.publish(ctx, pkgEvents.New(pkgEvents.ReplySaved, map[string]interface{}{
		"user_id":     entry.UserID,
		"activity_id": entry.ID,
		"is_summon":   isSummon,
		"reply_chars": len(entry.ReplyText),
		"entity_type": "activity",
		"entity_id":   entry.ID.String(),
	}))

	p.enqueueReplyFinalized(entry)
}

func (p *NatsPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) enqueueReplyFinalized(entry *notice.ActivityEntry) {
	if p.queue == nil {
		return
	}

	payload, err := json.Marshal(ReplyFinalizedMessage{UserID: entry.UserID, ActivityID: entry.ID})
	if err != nil {
		p.logger.Error("EVENTS", "Failed to marshal reply finalized message", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.queue.Publish(p.topic, msg); err != nil {
		p.logger.Error("EVENTS", "Failed to enqueue reply finalized message", map[string]interface{}{
			"error":       err.Error(),
			"activity_id": entry.ID.String(),
		})
	}
}
