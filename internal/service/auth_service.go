package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/quotation-api/internal/auth"
	"github.com/straye-as/quotation-api/internal/domain"
	"github.com/straye-as/quotation-api/internal/mapper"
	"github.com/straye-as/quotation-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const unnamedUser = "Unnamed"

// AuthService implements the sign-in gate: users are created on first sign-in
// and may only start a session once an administrator has approved them
type AuthService struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewAuthService(userRepo *repository.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, logger: logger}
}

// SignIn registers unknown identities as unapproved users and admits approved ones.
// It returns ErrUserNotApproved for a first sign-in and for users still awaiting approval.
func (s *AuthService) SignIn(ctx context.Context, identity *auth.Identity) (*domain.SessionUserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err = s.register(ctx, email, identity.Name)
		if err != nil {
			return nil, err
		}
		s.logger.Info("user registered, awaiting approval",
			zap.String("user_id", user.ID.String()),
			zap.String("email", email),
		)
		return nil, ErrUserNotApproved
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsApproved {
		s.logger.Info("sign-in rejected, user not approved", zap.String("email", email))
		return nil, ErrUserNotApproved
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	dto := mapper.ToSessionUserDTO(user)
	return &dto, nil
}

// register creates an unapproved user. A concurrent first sign-in for the same
// email loses the unique index race and reads the winner's row instead.
func (s *AuthService) register(ctx context.Context, email, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = unnamedUser
	}
	user := &domain.User{
		Email:      email,
		Name:       name,
		Role:       domain.UserRoleUser,
		IsApproved: false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		existing, getErr := s.userRepo.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return existing, nil
	}
	return user, nil
}

// ResolveSessionUser returns the approved user for identity, for use by the auth middleware
func (s *AuthService) ResolveSessionUser(ctx context.Context, identity *auth.Identity) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(identity.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUnknownUser
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsApproved {
		return nil, ErrUserNotApproved
	}
	return user, nil
}

// SetApproval grants or revokes access for userID
func (s *AuthService) SetApproval(ctx context.Context, userID uuid.UUID, approved bool) (*domain.SessionUserDTO, error) {
	if err := s.userRepo.SetApproved(ctx, userID, approved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update approval: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	actor := "unknown"
	if caller, ok := auth.FromContext(ctx); ok {
		actor = caller.Email
	}
	s.logger.Info("user approval changed",
		zap.String("user_id", userID.String()),
		zap.Bool("approved", approved),
		zap.String("changed_by", actor),
	)

	dto := mapper.ToSessionUserDTO(user)
	return &dto, nil
}

var _ auth.UserResolver = (*AuthService)(nil)
