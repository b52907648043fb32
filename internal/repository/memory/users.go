package memory

import (
	"context"
	"strings"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/models"
)

type UserRepository struct {
	db *db
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, user.Email) || u.Username == user.Username {
			return apperr.AlreadyExists("user already exists")
		}
	}

	r.db.stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	cp := *user
	r.db.users[cp.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u := r.db.userRef(id)
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (r *UserRepository) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}
