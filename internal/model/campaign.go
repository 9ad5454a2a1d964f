// internal/model/campaign.go
package model

import "time"

type Campaign struct {
	ID             int        `db:"id" json:"id"`
	UserID         int        `db:"user_id" json:"user_id"`
	Name           string     `db:"name" json:"name"`
	Goal           float64    `db:"goal" json:"goal"`
	CampaignLength int        `db:"campaign_length" json:"campaign_length"`
	Country        string     `db:"country" json:"country"`
	Category       string     `db:"category" json:"category"`
	SubCategory    string     `db:"sub_category" json:"sub_category"`
	Description    string     `db:"description" json:"description"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// CampaignInput is the body accepted when creating a campaign. Pointers let
// the validator tell a missing number apart from a zero.
type CampaignInput struct {
	Name           string   `json:"name"`
	Goal           *float64 `json:"goal" validate:"required,gt=0"`
	CampaignLength *int     `json:"campaign_length" validate:"required,gt=0"`
	Country        string   `json:"country" validate:"required"`
	Category       string   `json:"category" validate:"required"`
	SubCategory    string   `json:"sub_category" validate:"required"`
	Description    string   `json:"description" validate:"required"`
}

// Campaign builds the record to persist. The owner always comes from the
// caller, never from the body.
func (in CampaignInput) Campaign(userID int) *Campaign {
	c := &Campaign{
		UserID:      userID,
		Name:        in.Name,
		Country:     in.Country,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Description: in.Description,
	}
	if in.Goal != nil {
		c.Goal = *in.Goal
	}
	if in.CampaignLength != nil {
		c.CampaignLength = *in.CampaignLength
	}
	return c
}

// CampaignChanges is a partial update; nil fields are left untouched.
type CampaignChanges struct {
	Name           *string  `json:"name,omitempty"`
	Goal           *float64 `json:"goal,omitempty"`
	CampaignLength *int     `json:"campaign_length,omitempty"`
	Country        *string  `json:"country,omitempty"`
	Category       *string  `json:"category,omitempty"`
	SubCategory    *string  `json:"sub_category,omitempty"`
	Description    *string  `json:"description,omitempty"`
}

// Empty reports whether no field is set.
func (ch CampaignChanges) Empty() bool {
	return ch.Name == nil && ch.Goal == nil && ch.CampaignLength == nil &&
		ch.Country == nil && ch.Category == nil && ch.SubCategory == nil &&
		ch.Description == nil
}
