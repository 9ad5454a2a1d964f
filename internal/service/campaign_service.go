// internal/service/campaign_service.go
package service

import (
	"context"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/prediction"
	"github.com/unclebandit/kickstarter-backend/internal/queue"
	"github.com/unclebandit/kickstarter-backend/internal/repository"
)

// Predictor scores a campaign's feature vector.
type Predictor interface {
	Predict(ctx context.Context, req model.PredictionRequest) (*prediction.Result, error)
}

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Predictor    Predictor
	Queue        queue.Queue // optional
	Logger       zerolog.Logger
}

func (s *CampaignService) ListUserCampaigns(ctx context.Context, userID int) ([]model.Campaign, error) {
	return s.CampaignRepo.FindByUserID(ctx, userID)
}

func (s *CampaignService) CreateCampaign(ctx context.Context, userID int, input model.CampaignInput) (*model.Campaign, error) {
	c := input.Campaign(userID)
	if err := s.CampaignRepo.Add(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, queue.CampaignCreated, c.ID, userID)
	return c, nil
}

// UpdateCampaign applies changes once the campaign is known to exist and
// belong to the user, then returns the stored result.
func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, campaignID int, changes model.CampaignChanges) (*model.Campaign, error) {
	if _, err := s.lookup(ctx, userID, campaignID); err != nil {
		return nil, err
	}

	if err := s.CampaignRepo.Update(ctx, campaignID, changes); err != nil {
		return nil, err
	}

	updated, err := s.CampaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.CampaignUpdated, campaignID, userID)
	return updated, nil
}

// DeleteCampaign removes the campaign and returns the user's remaining ones.
func (s *CampaignService) DeleteCampaign(ctx context.Context, userID, campaignID int) ([]model.Campaign, error) {
	if _, err := s.lookup(ctx, userID, campaignID); err != nil {
		return nil, err
	}

	if err := s.CampaignRepo.Remove(ctx, campaignID); err != nil {
		return nil, err
	}

	s.publish(ctx, queue.CampaignDeleted, campaignID, userID)
	return s.CampaignRepo.FindByUserID(ctx, userID)
}

// PredictCampaign forwards the features taken from the request body, not
// the stored campaign.
func (s *CampaignService) PredictCampaign(ctx context.Context, userID, campaignID int, features model.PredictionRequest) (*prediction.Result, error) {
	if _, err := s.lookup(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	return s.Predictor.Predict(ctx, features)
}

// lookup resolves the campaign before anything acts on it. A campaign
// owned by someone else is reported as not found.
func (s *CampaignService) lookup(ctx context.Context, userID, campaignID int) (*model.Campaign, error) {
	c, err := s.CampaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.UserID != userID {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}
	return c, nil
}

// publish never fails the caller; a lost event only delays a background
// prediction.
func (s *CampaignService) publish(ctx context.Context, t queue.EventType, campaignID, userID int) {
	if s.Queue == nil {
		return
	}
	ev := queue.NewEvent(t, campaignID, userID)
	if err := queue.PublishEvent(ctx, s.Queue, ev); err != nil {
		s.Logger.Warn().Err(err).Str("event", string(t)).Int("campaign_id", campaignID).
			Msg("failed to publish campaign event")
	}
}
