package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/auth"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/metrics"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const (
	invalidCredentialsMessage = "Incorrect email or password"
	invalidTokenMessage       = "Could not validate credentials"
	emailTakenMessage         = "Email already registered"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = apperrors.AuthenticationFailed(invalidCredentialsMessage)
	// ErrUserAlreadyExists is returned when trying to register an existing email.
	ErrUserAlreadyExists = apperrors.Conflict(emailTakenMessage)
	// ErrInvalidToken is returned when a bearer token is invalid, expired, revoked or orphaned.
	ErrInvalidToken = apperrors.AuthenticationFailed(invalidTokenMessage)
)

// RegisterInput carries the fields of a registration.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (accessToken string, user *model.User, err error)
	VerifyToken(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) error
}

// AuthOptions tunes token lifetime and hashing cost.
type AuthOptions struct {
	TokenTTL   time.Duration
	BcryptCost int
}

type authService struct {
	store      repository.Store
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	metrics    metrics.Recorder
	opts       AuthOptions
	// dummyHash is compared against when the email is unknown, so both failure paths cost one bcrypt check.
	dummyHash []byte
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store repository.Store,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	recorder metrics.Recorder,
	opts AuthOptions,
) (AuthService, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = auth.DefaultAccessTokenExpiry
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}
	return &authService{
		store:      store,
		jwtService: jwtService,
		tokenStore: tokenStore,
		metrics:    recorder,
		opts:       opts,
		dummyHash:  dummy,
	}, nil
}

// Register creates a new user with a hashed password. Emails are matched exactly.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		existing, err := tx.Users().FindByEmail(ctx, in.Email)
		if err == nil && existing != nil {
			return ErrUserAlreadyExists
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("check user existence: %w", err)
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			// lost a race with a concurrent registration of the same email
			if errors.Is(err, apperrors.ErrConflict) {
				return ErrUserAlreadyExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.UserRegistered()
	slog.InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown email and wrong password are indistinguishable.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	var user *model.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", nil, fmt.Errorf("find user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.metrics.LoginAttempt(false)
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.LoginAttempt(false)
		return "", nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.IssueToken(user.ID, s.opts.TokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}

	s.metrics.LoginAttempt(true)
	return accessToken, user, nil
}

// VerifyToken resolves a bearer token to an existing user.
func (s *authService) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil || revoked {
		return nil, ErrInvalidToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user *model.User
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByID(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Logout revokes the token until its natural expiry. A failed revocation is returned, never ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	if err := s.tokenStore.RevokeToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
