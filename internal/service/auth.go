// Package service holds the StackIt use cases on top of the repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
	"github.com/stackit-qa/stackit/backend/internal/auth"
	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/repository"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

var ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")

type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenManager
	validator *validation.Validator
	logger    logrus.FieldLogger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, v *validation.Validator, logger logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, tokens: tokens, validator: v, logger: logger}
}

// Signup creates the user and returns it with a session token.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, "", err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", apperr.AlreadyExists("User with this email or username already exists")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", apperr.Internal("signup failed", err)
	}

	user := &models.User{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.Is(err, apperr.ErrAlreadyExists) {
			return nil, "", apperr.AlreadyExists("User with this email or username already exists")
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", apperr.Internal("signup failed", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user signed up")
	return user, token, nil
}

// Login checks the credentials and returns the user with a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.Is(err, apperr.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := auth.ComparePassword(user.Password, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", apperr.Internal("login failed", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", apperr.Internal("login failed", err)
	}
	return user, token, nil
}

// Authenticate resolves a session token to the caller identity.
func (s *AuthService) Authenticate(token string) (models.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Identity{}, apperr.Unauthorized("Invalid or expired token")
	}
	return claims.Identity(), nil
}
