package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/response"
	"github.com/unclebandit/kickstarter-backend/internal/service"
)

var (
	errGetCampaigns     = appErrors.Internal("failed to get campaign with id")
	errMissingFields    = appErrors.BadRequest("missing campaign fields")
	errUpdateCampaign   = appErrors.Internal("failed to update campaign")
	errDeleteCampaign   = appErrors.Internal("failed to delete campaigns")
	errPrediction       = appErrors.Internal("error getting prediction")
	errCampaignNotFound = appErrors.NotFound("campaign not found")
)

type CampaignController struct {
	CampaignService *service.CampaignService
	Validate        *validator.Validate
	Logger          zerolog.Logger
}

func NewCampaignController(svc *service.CampaignService, logger zerolog.Logger) *CampaignController {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &CampaignController{
		CampaignService: svc,
		Validate:        validate,
		Logger:          logger,
	}
}

type updateCampaignResponse struct {
	UpdatedCampaign *model.Campaign `json:"updatedCampaign"`
	Message         string          `json:"message"`
}

type deleteCampaignResponse struct {
	Campaigns []model.Campaign `json:"campaigns"`
	Message   string           `json:"message"`
}

// GET /{id}/campaigns
func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		userID, apiErr := pathID(r, "id")
		if apiErr != nil {
			return response.Fail(apiErr)
		}

		campaigns, err := c.CampaignService.ListUserCampaigns(r.Context(), userID)
		if err != nil {
			return response.Fail(errGetCampaigns.Wrap(err))
		}
		return response.OK(campaigns)
	})
}

// POST /{id}/campaigns
func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		userID, apiErr := pathID(r, "id")
		if apiErr != nil {
			return response.Fail(apiErr)
		}

		var input model.CampaignInput
		if err := decodeBody(r, &input); err != nil {
			return response.Fail(errMissingFields.Wrap(err))
		}
		if err := c.Validate.Struct(input); err != nil {
			return response.Fail(errMissingFields.With("errors", fieldErrors(err)).Wrap(err))
		}

		campaign, err := c.CampaignService.CreateCampaign(r.Context(), userID, input)
		if err != nil {
			return response.Fail(errMissingFields.Wrap(err))
		}
		return response.Created(campaign)
	})
}

// PUT /{id}/campaigns/{campaign_id}
func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		userID, campaignID, apiErr := campaignParams(r)
		if apiErr != nil {
			return response.Fail(apiErr)
		}

		var changes model.CampaignChanges
		if err := decodeBody(r, &changes); err != nil {
			return response.Fail(errInvalidBody.Wrap(err))
		}

		updated, err := c.CampaignService.UpdateCampaign(r.Context(), userID, campaignID, changes)
		if err != nil {
			return response.Fail(classify(err, errUpdateCampaign))
		}
		return response.OK(updateCampaignResponse{UpdatedCampaign: updated, Message: "campaign updated"})
	})
}

// DELETE /{id}/campaigns/{campaign_id}
func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		userID, campaignID, apiErr := campaignParams(r)
		if apiErr != nil {
			return response.Fail(apiErr)
		}

		campaigns, err := c.CampaignService.DeleteCampaign(r.Context(), userID, campaignID)
		if err != nil {
			return response.Fail(classify(err, errDeleteCampaign))
		}
		return response.OK(deleteCampaignResponse{Campaigns: campaigns, Message: "campaign deleted"})
	})
}

// POST /{id}/campaigns/{campaign_id}/prediction
func (c *CampaignController) PredictCampaign(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		userID, campaignID, apiErr := campaignParams(r)
		if apiErr != nil {
			return response.Fail(apiErr)
		}

		var fields map[string]json.RawMessage
		if err := decodeBody(r, &fields); err != nil {
			return response.Fail(errInvalidBody.Wrap(err))
		}

		features := model.NewPredictionRequest(fields)
		c.Logger.Debug().Int("campaign_id", campaignID).Interface("features", features).Msg("prediction features")

		res, err := c.CampaignService.PredictCampaign(r.Context(), userID, campaignID, features)
		if err != nil {
			return response.Fail(classify(err, errPrediction))
		}
		return response.Raw(http.StatusOK, res.ContentType, res.Body)
	})
}

func campaignParams(r *http.Request) (int, int, *appErrors.APIError) {
	userID, apiErr := pathID(r, "id")
	if apiErr != nil {
		return 0, 0, apiErr
	}
	campaignID, apiErr := pathID(r, "campaign_id")
	if apiErr != nil {
		return 0, 0, apiErr
	}
	return userID, campaignID, nil
}

// classify maps a failed lookup to 404 and anything else to fallback.
func classify(err error, fallback *appErrors.APIError) *appErrors.APIError {
	var nf *appErrors.ErrCampaignNotFound
	if errors.As(err, &nf) {
		return errCampaignNotFound.Wrap(err)
	}
	return fallback.Wrap(err)
}

type fieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func fieldErrors(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "gt":
			msg = "must be greater than " + fe.Param()
		}
		out = append(out, fieldError{Field: fe.Field(), Error: msg})
	}
	return out
}
