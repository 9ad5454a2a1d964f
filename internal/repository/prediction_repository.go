package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/kickstarter-backend/internal/model"
)

type PredictionRepositoryInterface interface {
	Save(ctx context.Context, p *model.Prediction) error
}

// PredictionRepository keeps the predictions produced in the background
// for each campaign.
type PredictionRepository struct {
	DB *sql.DB
}

// Save inserts the prediction and fills in its ID and CreatedAt.
func (r *PredictionRepository) Save(ctx context.Context, p *model.Prediction) error {
	query := `
        INSERT INTO campaign_predictions (campaign_id, request, response)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	return r.DB.QueryRowContext(ctx, query, p.CampaignID, []byte(p.Request), []byte(p.Response)).
		Scan(&p.ID, &p.CreatedAt)
}

var _ PredictionRepositoryInterface = (*PredictionRepository)(nil)
