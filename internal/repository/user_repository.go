package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/unclebandit/kickstarter-backend/internal/model"
)

// UserRepositoryInterface defines methods used by service
type UserRepositoryInterface interface {
	Find(ctx context.Context) ([]model.User, error)
	Remove(ctx context.Context, id int) (*model.User, error)
}

// UserRepository is the concrete implementation
type UserRepository struct {
	DB *sql.DB
}

// Find lists every user. Password hashes are never selected.
func (r *UserRepository) Find(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, username FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Remove deletes a user and returns the deleted row, or nil when there was
// nothing to delete. Their campaigns go with them (ON DELETE CASCADE).
func (r *UserRepository) Remove(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, `DELETE FROM users WHERE id=$1 RETURNING id, username`, id).Scan(&u.ID, &u.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found
		}
		return nil, err
	}
	return &u, nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
