package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-info-api/internal/auth"
	"github.com/spec-kit/queue-info-api/internal/config"
	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/events"
	"github.com/spec-kit/queue-info-api/internal/repository"
	apperrors "github.com/spec-kit/queue-info-api/pkg/util"
)

// AuthService coordinates login, refresh and password-reset flows. Token
// issuance and verification are stateless; the user repository is the only
// collaborator that touches storage.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	codec      *auth.TokenCodec
	issuer     *auth.TokenIssuer
	resets     *auth.PasswordResetTokenService
	hasher     *auth.PasswordHasher
	openReg    bool
}

// NewAuthService builds the service and its token components from config.
// The signing secret is injected here once and never read from ambient state
// afterwards.
func NewAuthService(cfg *config.Config, users repository.UserRepository, dispatcher events.Dispatcher) (*AuthService, error) {
	codec, err := auth.NewTokenCodec(cfg.Auth.Secret, cfg.Auth.SigningAlgorithm)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewTokenIssuer(codec, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}
	resets, err := auth.NewPasswordResetTokenService(codec, cfg.Auth.ResetTokenTTL())
	if err != nil {
		return nil, err
	}

	return &AuthService{
		users:      users,
		dispatcher: dispatcher,
		codec:      codec,
		issuer:     issuer,
		resets:     resets,
		hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.MaxConcurrentHashes),
		openReg:    cfg.Users.OpenRegistration,
	}, nil
}

// Login authenticates by email and password and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, apperrors.NewInvalidCredentials()
		}
		return domain.TokenPair{}, err
	}
	if !s.hasher.Verify(ctx, password, user.HashedPassword) {
		return domain.TokenPair{}, apperrors.NewInvalidCredentials()
	}
	if !user.IsActive {
		return domain.TokenPair{}, apperrors.NewInactiveAccount()
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

// Refresh exchanges a presented refresh token for a new pair. The old refresh
// token is not invalidated server-side; tokens are self-contained and there is
// no revocation store.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInvalidToken(err)
	}
	if claims.Kind != auth.TokenKindRefresh {
		return domain.TokenPair{}, apperrors.NewInvalidToken(auth.ErrWrongTokenKind)
	}
	userID, err := claims.UserID()
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInvalidToken(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, apperrors.NewUnknownSubject("user")
		}
		return domain.TokenPair{}, err
	}
	if !user.IsActive {
		return domain.TokenPair{}, apperrors.NewInactiveAccount()
	}

	pair, err := s.issuer.IssuePair(user.ID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

// RequestPasswordReset generates a reset token for the account behind the
// email and hands it to the notification path. The not-found signal mirrors
// the historical API shape; it does reveal account existence.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnknownSubject("user with this email")
		}
		return err
	}

	token, err := s.resets.Generate(user.ID)
	if err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordResetRequested,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload: events.PasswordResetRequestedPayload{
			Email:      user.Email,
			ResetToken: token,
		},
	})
	return nil
}

// ResetPassword verifies the reset token and persists a new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, newPassword string) error {
	userID, err := s.resets.Verify(tokenStr)
	if err != nil {
		return apperrors.NewInvalidToken(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnknownSubject("user")
		}
		return err
	}
	if !user.IsActive {
		return apperrors.NewInactiveAccount()
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordChanged,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.PasswordChangedPayload{Email: user.Email},
	})
	return nil
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	if !s.openReg {
		return nil, apperrors.NewForbidden("open registration is disabled")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:       fullName,
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		UserID:    user.ID,
		Timestamp: time.Now(),
		Payload:   events.UserRegisteredPayload{Email: user.Email, FullName: user.FullName},
	})
	return user, nil
}

// Codec exposes the token codec for middleware usage.
func (s *AuthService) Codec() *auth.TokenCodec {
	return s.codec
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
