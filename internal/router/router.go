package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/unclebandit/kickstarter-backend/internal/controller"
	"github.com/unclebandit/kickstarter-backend/internal/middleware"
)

type Config struct {
	BasePath  string
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter mounts the users API under cfg.BasePath. Every endpoint runs
// behind the access gate; /health does not.
func NewRouter(cfg Config, users *controller.UserController, campaigns *controller.CampaignController) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	gate := middleware.Restricted(cfg.JWTSecret, cfg.Logger)

	r.Route(cfg.BasePath, func(r chi.Router) {
		restricted := r.With(gate)

		restricted.Get("/", users.ListUsers)
		restricted.Delete("/{id}", users.DeleteUser)

		// Campaign CRUD routes
		restricted.Get("/{id}/campaigns", campaigns.ListCampaigns)
		restricted.Post("/{id}/campaigns", campaigns.CreateCampaign)
		restricted.Put("/{id}/campaigns/{campaign_id}", campaigns.UpdateCampaign)
		restricted.Delete("/{id}/campaigns/{campaign_id}", campaigns.DeleteCampaign)

		// Predictions
		restricted.Post("/{id}/campaigns/{campaign_id}/prediction", campaigns.PredictCampaign)
	})

	return r
}
