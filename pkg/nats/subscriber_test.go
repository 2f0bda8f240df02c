package nats

import (
	"encoding/json"
	"testing"
	"time"

	"legal-aid-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		subject  string
		data     string
		wantType string
		wantTime *time.Time
		wantErr  bool
	}{
		{
			name:     "type from subject and timestamp from payload",
			subject:  "events.REPLY_SAVED",
			data:     `{"user_id":"u1","occurred_at":"2024-05-01T10:00:00Z"}`,
			wantType: "REPLY_SAVED",
			wantTime: &ts,
		},
		{
			name:     "missing timestamp",
			subject:  "events.NOTICE_UPLOADED",
			data:     `{"user_id":"u1"}`,
			wantType: "NOTICE_UPLOADED",
		},
		{
			name:    "invalid json",
			subject: "events.NOTICE_UPLOADED",
			data:    `not-json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := DecodeEvent(tt.subject, []byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, evt.EventType())
			assert.Equal(t, "u1", evt.Payload()["user_id"])
			if tt.wantTime != nil {
				assert.True(t, tt.wantTime.Equal(evt.Timestamp()))
			} else {
				assert.False(t, evt.Timestamp().IsZero())
			}
		})
	}
}

func TestEncodeEvent_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	in := events.BaseEvent{
		Type:       events.ReplySaved,
		Data:       map[string]interface{}{"user_id": "u1", "reply_chars": float64(1200)},
		OccurredAt: ts,
	}

	data, err := EncodeEvent(in)
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, EventSource, envelope["source"])
	assert.Equal(t, events.ReplySaved, envelope["type"])
	assert.NotEmpty(t, envelope["id"])

	// The subject is ignored when the envelope names the type.
	out, err := DecodeEvent("events.SOMETHING_ELSE", data)
	require.NoError(t, err)
	assert.Equal(t, events.ReplySaved, out.EventType())
	assert.Equal(t, in.Data, out.Payload())
	assert.True(t, ts.Equal(out.Timestamp()))
}
