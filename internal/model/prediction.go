// internal/model/prediction.go
package model

import (
	"encoding/json"
	"time"
)

// PredictionRequest is the positional feature vector the prediction
// service expects. Values are passed through as the client sent them.
type PredictionRequest struct {
	X1 json.RawMessage `json:"x1,omitempty"` // goal
	X2 json.RawMessage `json:"x2,omitempty"` // campaign_length
	X3 json.RawMessage `json:"x3,omitempty"` // country
	X4 json.RawMessage `json:"x4,omitempty"` // category
	X5 json.RawMessage `json:"x5,omitempty"` // sub_category
	X6 json.RawMessage `json:"x6,omitempty"` // description
}

// NewPredictionRequest maps a decoded campaign body onto x1..x6. Fields
// missing from the body stay unset and are left out of the payload.
func NewPredictionRequest(fields map[string]json.RawMessage) PredictionRequest {
	return PredictionRequest{
		X1: fields["goal"],
		X2: fields["campaign_length"],
		X3: fields["country"],
		X4: fields["category"],
		X5: fields["sub_category"],
		X6: fields["description"],
	}
}

// PredictionRequest builds the feature vector from a stored campaign.
func (c *Campaign) PredictionRequest() (PredictionRequest, error) {
	values := []any{c.Goal, c.CampaignLength, c.Country, c.Category, c.SubCategory, c.Description}
	raw := make([]json.RawMessage, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return PredictionRequest{}, err
		}
		raw[i] = b
	}
	return PredictionRequest{X1: raw[0], X2: raw[1], X3: raw[2], X4: raw[3], X5: raw[4], X6: raw[5]}, nil
}

type Prediction struct {
	ID         int             `db:"id" json:"id"`
	CampaignID int             `db:"campaign_id" json:"campaign_id"`
	Request    json.RawMessage `db:"request" json:"request"`
	Response   json.RawMessage `db:"response" json:"response"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
