package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service provides user management operations.
type Service struct {
	repo   Repository
	jwt    *JWTManager
	logger *zap.Logger
}

// NewService creates a new user service.
func NewService(repo Repository, jwt *JWTManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		jwt:    jwt,
		logger: logger,
	}
}

// Create registers a new user with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// Authenticate verifies credentials and issues an access token.
func (s *Service) Authenticate(ctx context.Context, req *AuthenticateRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug("password mismatch", zap.Uint("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	if !user.CanLogin() {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		User:      user.ToResponse(),
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
	}, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uint) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns users, optionally filtered by role.
func (s *Service) List(ctx context.Context, role *Role, offset, limit int) ([]*User, error) {
	if role != nil && !role.IsValid() {
		return nil, ErrInvalidRole
	}
	return s.repo.List(ctx, role, offset, limit)
}

// UpdateRole changes a user's role.
func (s *Service) UpdateRole(ctx context.Context, id uint, role Role) (*User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	s.logger.Info("user role updated", zap.Uint("user_id", id), zap.String("role", string(role)))
	return s.repo.GetByID(ctx, id)
}

// Delete removes a user.
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
