package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/queue"
	"github.com/unclebandit/kickstarter-backend/internal/repository"
)

// PredictionWorker scores campaigns in the background whenever they are
// created or changed and keeps the result.
type PredictionWorker struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	PredictionRepo repository.PredictionRepositoryInterface
	Predictor      Predictor
	Timeout        time.Duration
	Logger         zerolog.Logger
}

// Constructor
func NewPredictionWorker(campaigns repository.CampaignRepositoryInterface, predictions repository.PredictionRepositoryInterface, predictor Predictor, logger zerolog.Logger) *PredictionWorker {
	return &PredictionWorker{
		CampaignRepo:   campaigns,
		PredictionRepo: predictions,
		Predictor:      predictor,
		Timeout:        time.Minute,
		Logger:         logger,
	}
}

// Start subscribes the worker to campaign events on q.
func (w *PredictionWorker) Start(q queue.Queue) error {
	return q.Subscribe(queue.CampaignEventsTopic, w.Handle)
}

// Handle processes one encoded event. Returning an error asks the queue to
// retry; malformed events and campaigns that no longer exist are dropped.
func (w *PredictionWorker) Handle(body []byte) error {
	ev, err := queue.DecodeEvent(body)
	if err != nil {
		w.Logger.Warn().Err(err).Msg("dropping malformed campaign event")
		return nil
	}

	log := w.Logger.With().Str("event_id", ev.ID.String()).Str("event", string(ev.Type)).
		Int("campaign_id", ev.CampaignID).Logger()

	switch ev.Type {
	case queue.CampaignCreated, queue.CampaignUpdated:
	default:
		log.Debug().Msg("nothing to do for event")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
	defer cancel()

	campaign, err := w.CampaignRepo.FindByID(ctx, ev.CampaignID)
	if err != nil {
		var nf *appErrors.ErrCampaignNotFound
		if errors.As(err, &nf) {
			log.Info().Msg("campaign gone, skipping prediction")
			return nil
		}
		return fmt.Errorf("load campaign: %w", err)
	}

	features, err := campaign.PredictionRequest()
	if err != nil {
		return fmt.Errorf("build features: %w", err)
	}

	res, err := w.Predictor.Predict(ctx, features)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	request, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("encode features: %w", err)
	}

	p := &model.Prediction{
		CampaignID: campaign.ID,
		Request:    request,
		Response:   jsonOrString(res.Body),
	}
	if err := w.PredictionRepo.Save(ctx, p); err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}

	log.Info().Int("prediction_id", p.ID).Msg("prediction stored")
	return nil
}

// jsonOrString keeps a JSON body as-is and stores anything else as a
// JSON string.
func jsonOrString(body []byte) json.RawMessage {
	if json.Valid(body) {
		return body
	}
	b, _ := json.Marshal(string(body))
	return b
}
