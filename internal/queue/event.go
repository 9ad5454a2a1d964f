package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignEventsTopic carries campaign lifecycle events.
const CampaignEventsTopic = "campaign_events"

type EventType string

const (
	CampaignCreated EventType = "campaign.created"
	CampaignUpdated EventType = "campaign.updated"
	CampaignDeleted EventType = "campaign.deleted"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	CampaignID int       `json:"campaign_id"`
	UserID     int       `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEvent(t EventType, campaignID, userID int) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		CampaignID: campaignID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

// PublishEvent encodes ev and publishes it on CampaignEventsTopic.
func PublishEvent(ctx context.Context, q Queue, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return q.Publish(ctx, CampaignEventsTopic, body)
}

func DecodeEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
