package service

import (
	"context"

	"github.com/unclebandit/kickstarter-backend/internal/model"
	"github.com/unclebandit/kickstarter-backend/internal/repository"
)

type UserService struct {
	UserRepo repository.UserRepositoryInterface
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.UserRepo.Find(ctx)
}

// DeleteUser removes the user without checking first; a nil user means there
// was nothing to delete.
func (s *UserService) DeleteUser(ctx context.Context, id int) (*model.User, error) {
	return s.UserRepo.Remove(ctx, id)
}
