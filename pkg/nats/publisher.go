package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"legal-aid-be/pkg/events"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "LEGAL_AID_EVENTS"
	SubjectPrefix = "events."
	EventSource   = "legal-aid-be"
)

// Publisher sends domain events to the JetStream stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func connect(url string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return nc, js, nil
}

// NewPublisher connects and makes sure the event stream exists. A stream
// error is returned alongside a usable publisher so callers can decide
// whether to keep going.
func NewPublisher(url string) (*Publisher, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		return &Publisher{nc: nc, js: js}, fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends the event to events.<TYPE> as a structured CloudEvent.
// The CloudEvent id doubles as the JetStream dedup id.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	ce, err := toCloudEvent(event)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := SubjectPrefix + event.EventType()

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set("Content-Type", cloudevents.ApplicationCloudEventsJSON)
	msg.Header.Set(nats.MsgIdHdr, ce.ID())

	if _, err := p.js.PublishMsg(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}

	return nil
}

// EncodeEvent renders event as CloudEvents structured-mode JSON.
func EncodeEvent(event events.Event) ([]byte, error) {
	ce, err := toCloudEvent(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ce)
}

func toCloudEvent(event events.Event) (cloudevents.Event, error) {
	ce := cloudevents.NewEvent()
	ce.SetID(uuid.NewString())
	ce.SetSource(EventSource)
	ce.SetType(event.EventType())
	ce.SetTime(event.Timestamp().UTC())
	if err := ce.SetData(cloudevents.ApplicationJSON, event.Payload()); err != nil {
		return ce, fmt.Errorf("failed to encode event payload: %w", err)
	}
	return ce, nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
