package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	FindByID(ctx context.Context, id int) (*model.Campaign, error)
	FindByUserID(ctx context.Context, userID int) ([]model.Campaign, error)
	Add(ctx context.Context, c *model.Campaign) error
	Update(ctx context.Context, id int, changes model.CampaignChanges) error
	Remove(ctx context.Context, id int) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, user_id, name, goal, campaign_length, country, category, sub_category, description, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner, c *model.Campaign) error {
	return row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Goal, &c.CampaignLength, &c.Country,
		&c.Category, &c.SubCategory, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
}

// FindByID returns ErrCampaignNotFound when no row matches.
func (r *CampaignRepository) FindByID(ctx context.Context, id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`

	var c model.Campaign
	if err := scanCampaign(r.DB.QueryRowContext(ctx, query, id), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

// FindByUserID lists a user's campaigns, oldest first.
func (r *CampaignRepository) FindByUserID(ctx context.Context, userID int) ([]model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id=$1 ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Add(ctx context.Context, c *model.Campaign) error {
	query := `
        INSERT INTO campaigns (user_id, name, goal, campaign_length, country, category, sub_category, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	return r.DB.QueryRowContext(ctx, query,
		c.UserID, c.Name, c.Goal, c.CampaignLength, c.Country, c.Category, c.SubCategory, c.Description,
	).Scan(&c.ID, &c.CreatedAt)
}

// Update writes only the fields set in changes.
func (r *CampaignRepository) Update(ctx context.Context, id int, changes model.CampaignChanges) error {
	sets, args := updateClauses(changes)
	sets = append(sets, "updated_at=NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE campaigns SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func updateClauses(ch model.CampaignChanges) ([]string, []any) {
	sets := []string{}
	args := []any{}
	argPos := 1

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s=$%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if ch.Name != nil {
		add("name", *ch.Name)
	}
	if ch.Goal != nil {
		add("goal", *ch.Goal)
	}
	if ch.CampaignLength != nil {
		add("campaign_length", *ch.CampaignLength)
	}
	if ch.Country != nil {
		add("country", *ch.Country)
	}
	if ch.Category != nil {
		add("category", *ch.Category)
	}
	if ch.SubCategory != nil {
		add("sub_category", *ch.SubCategory)
	}
	if ch.Description != nil {
		add("description", *ch.Description)
	}
	return sets, args
}

func (r *CampaignRepository) Remove(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM campaigns WHERE id=$1`, id)
	return err
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
