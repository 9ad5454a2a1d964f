package controller

import (
	"net/http"

	"github.com/rs/zerolog"

	appErrors "github.com/unclebandit/kickstarter-backend/internal/errors"
	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/response"
	"github.com/unclebandit/kickstarter-backend/internal/service"
)

type UserController struct {
	UserService *service.UserService
	Logger      zerolog.Logger
}

type deleteUserResponse struct {
	UserToDelete *model.User `json:"userToDelete"`
	Message      string      `json:"message"`
}

// GET /
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		users, err := c.UserService.ListUsers(r.Context())
		if err != nil {
			return response.Fail(appErrors.Internal("db error getting users").Wrap(err))
		}
		return response.OK(users)
	})
}

// DELETE /{id}
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	response.Handle(w, r, c.Logger, func(r *http.Request) response.Result {
		id, apiErr := pathID(r, "id")
		if apiErr != nil {
			return response.Fail(apiErr)
		}

		user, err := c.UserService.DeleteUser(r.Context(), id)
		if err != nil {
			return response.Fail(appErrors.Internal("failed to delete user").Wrap(err))
		}
		return response.OK(deleteUserResponse{UserToDelete: user, Message: "deleted"})
	})
}
