package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps every message on the wire with routing metadata. The
// payload stays raw so the consumer can decode it by msg_type.
type Envelope struct {
	MsgType   string          `json:"msg_type"`
	MsgID     string          `json:"msg_id"`
	StationID string          `json:"station_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope creates an outbound envelope with a fresh UUID and timestamp.
func NewEnvelope(msgType, stationID string, payload []byte) *Envelope {
	return &Envelope{
		MsgType:   msgType,
		MsgID:     uuid.New().String(),
		StationID: stationID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.MsgType == "" {
		return nil, fmt.Errorf("envelope missing msg_type")
	}
	return &env, nil
}

// ChangeRecord is the change-feed payload. It is an invalidation hint,
// not a patch: consumers refetch the table, never apply the record.
type ChangeRecord struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// ViewInvalidator receives table-level change hints.
type ViewInvalidator interface {
	Invalidate(table string)
}

// ChangeFeedSubscriber listens on the changes topic and invalidates
// local views for records published by other stations. Delivery is
// at-least-once; a duplicate invalidation is a harmless recompute.
type ChangeFeedSubscriber struct {
	client    *Client
	topic     string
	stationID string
	views     ViewInvalidator
}

func NewChangeFeedSubscriber(client *Client, topic, stationID string, views ViewInvalidator) *ChangeFeedSubscriber {
	return &ChangeFeedSubscriber{
		client:    client,
		topic:     topic,
		stationID: stationID,
		views:     views,
	}
}

func (s *ChangeFeedSubscriber) Start() error {
	return s.client.Subscribe(s.topic, s.handleMessage)
}

func (s *ChangeFeedSubscriber) handleMessage(_ string, payload []byte) {
	env, err := DecodeEnvelope(payload)
	if err != nil {
		log.Printf("changefeed: %v", err)
		return
	}
	// Local mutations already invalidated their views on emit.
	if env.StationID == s.stationID {
		return
	}

	var rec ChangeRecord
	if err := json.Unmarshal(env.Payload, &rec); err != nil {
		log.Printf("changefeed: decode record: %v", err)
		return
	}
	if rec.Table == "" {
		log.Printf("changefeed: record from %s missing table", env.StationID)
		return
	}
	s.views.Invalidate(rec.Table)
}
