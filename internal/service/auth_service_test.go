package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/auth"
	apperrors "blogapi/internal/errors"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// userStore is a Store whose transactions share one mocked user repository.
type userStore struct {
	users        *MockUserRepository
	transactions int
}

func (s *userStore) Users() repository.UserRepository { return s.users }
func (s *userStore) Tags() repository.TagRepository   { return nil }
func (s *userStore) Posts() repository.PostRepository { return nil }

func (s *userStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.transactions++
	return fn(ctx, s)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type countingRecorder struct {
	registered int
	logins     map[bool]int
}

func (r *countingRecorder) UserRegistered()           { r.registered++ }
func (r *countingRecorder) LoginAttempt(success bool) { r.logins[success]++ }
func (r *countingRecorder) PostCreated()              {}
func (r *countingRecorder) TagCreated()               {}
func (r *countingRecorder) SoftDeleted(entity string) {}

const testSecret = "test-secret"

func newTestAuthService(t *testing.T) (AuthService, *MockUserRepository, *MockTokenStore, *countingRecorder) {
	t.Helper()
	svc, store, tokenStore, recorder := newTestAuthServiceWithStore(t)
	return svc, store.users, tokenStore, recorder
}

func newTestAuthServiceWithStore(t *testing.T) (AuthService, *userStore, *MockTokenStore, *countingRecorder) {
	t.Helper()
	store := &userStore{users: new(MockUserRepository)}
	tokenStore := new(MockTokenStore)
	recorder := &countingRecorder{logins: map[bool]int{}}
	svc, err := NewAuthService(store, auth.NewJWTService(testSecret), tokenStore, recorder, AuthOptions{
		TokenTTL:   time.Minute,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc, store, tokenStore, recorder
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, userRepo, _, recorder := newTestAuthService(t)
		userRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, apperrors.NotFound("user not found"))
		userRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := svc.Register(ctx, RegisterInput{
			Name:     "Ada",
			LastName: "Lovelace",
			Email:    "ada@example.com",
			Password: "Secret1!",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "Lovelace", user.LastName)
		assert.NotEqual(t, "Secret1!", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Secret1!")))
		assert.Equal(t, 1, recorder.registered)
		userRepo.AssertExpectations(t)
	})

	t.Run("email already registered", func(t *testing.T) {
		svc, userRepo, _, recorder := newTestAuthService(t)
		userRepo.On("FindByEmail", ctx, "ada@example.com").Return(&model.User{ID: uuid.New()}, nil)

		user, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "Secret1!"})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.EqualError(t, err, "Email already registered")
		assert.Zero(t, recorder.registered)
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost race on insert", func(t *testing.T) {
		svc, userRepo, _, _ := newTestAuthService(t)
		userRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, apperrors.NotFound("user not found"))
		userRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(apperrors.Conflict("duplicate key"))

		_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "Secret1!"})

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("lookup failure is not a conflict", func(t *testing.T) {
		svc, userRepo, _, _ := newTestAuthService(t)
		userRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, errors.New("db down"))

		_, err := svc.Register(ctx, RegisterInput{Email: "ada@example.com", Password: "Secret1!"})

		require.Error(t, err)
		assert.False(t, apperrors.IsClassified(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: hashed(t, "Secret1!")}

	t.Run("success issues a token for the user", func(t *testing.T) {
		svc, userRepo, _, recorder := newTestAuthService(t)
		userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)

		token, got, err := svc.Login(ctx, "ada@example.com", "Secret1!")

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		claims, err := auth.NewJWTService(testSecret).ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.NotEmpty(t, claims.ID)
		assert.Equal(t, 1, recorder.logins[true])
	})

	t.Run("wrong password and unknown email fail the same way", func(t *testing.T) {
		svc, userRepo, _, recorder := newTestAuthService(t)
		userRepo.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
		userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, apperrors.NotFound("user not found"))

		_, _, wrongPassword := svc.Login(ctx, "ada@example.com", "Wrong1!x")
		_, _, unknownEmail := svc.Login(ctx, "nobody@example.com", "Secret1!")

		assert.ErrorIs(t, wrongPassword, apperrors.ErrAuthenticationFailed)
		assert.ErrorIs(t, unknownEmail, apperrors.ErrAuthenticationFailed)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
		assert.Equal(t, "Incorrect email or password", unknownEmail.Error())
		assert.Equal(t, 2, recorder.logins[false])
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: uuid.New(), Email: "ada@example.com"}
	jwtService := auth.NewJWTService(testSecret)

	t.Run("valid token resolves the user", func(t *testing.T) {
		svc, userRepo, tokenStore, _ := newTestAuthService(t)
		token, err := jwtService.IssueToken(user.ID, time.Minute)
		require.NoError(t, err)
		tokenStore.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(false, nil)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		got, err := svc.VerifyToken(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("revoked token", func(t *testing.T) {
		svc, _, tokenStore, _ := newTestAuthService(t)
		token, err := jwtService.IssueToken(user.ID, time.Minute)
		require.NoError(t, err)
		tokenStore.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(true, nil)

		_, err = svc.VerifyToken(ctx, token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("user no longer exists", func(t *testing.T) {
		svc, userRepo, tokenStore, _ := newTestAuthService(t)
		token, err := jwtService.IssueToken(user.ID, time.Minute)
		require.NoError(t, err)
		tokenStore.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(false, nil)
		userRepo.On("FindByID", ctx, user.ID).Return(nil, apperrors.NotFound("user not found"))

		_, err = svc.VerifyToken(ctx, token)

		assert.ErrorIs(t, err, apperrors.ErrAuthenticationFailed)
		assert.EqualError(t, err, "Could not validate credentials")
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		svc, _, _, _ := newTestAuthService(t)
		token, err := auth.NewJWTService("other-secret").IssueToken(user.ID, time.Minute)
		require.NoError(t, err)

		_, err = svc.VerifyToken(ctx, token)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _, tokenStore, _ := newTestAuthService(t)

	token, err := auth.NewJWTService(testSecret).IssueToken(uuid.New(), time.Minute)
	require.NoError(t, err)
	claims, err := auth.NewJWTService(testSecret).ValidateToken(token)
	require.NoError(t, err)

	tokenStore.On("RevokeToken", ctx, claims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Minute
	})).Return(nil)

	require.NoError(t, svc.Logout(ctx, token))
	tokenStore.AssertExpectations(t)

	assert.ErrorIs(t, svc.Logout(ctx, "garbage"), ErrInvalidToken)
}

func TestAuthService_LogoutSurfacesRevocationFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, tokenStore, _ := newTestAuthService(t)
	token, err := auth.NewJWTService(testSecret).IssueToken(uuid.New(), time.Minute)
	require.NoError(t, err)

	tokenStore.On("RevokeToken", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).
		Return(errors.New("redis set: connection refused"))

	err = svc.Logout(ctx, token)

	require.Error(t, err)
	assert.False(t, apperrors.IsClassified(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAuthService_UserLookupsRunInTransactions(t *testing.T) {
	ctx := context.Background()
	svc, store, tokenStore, _ := newTestAuthServiceWithStore(t)
	user := &model.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: hashed(t, "Secret1!")}
	store.users.On("FindByEmail", ctx, "new@example.com").Return(nil, apperrors.NotFound("user not found"))
	store.users.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)
	store.users.On("FindByEmail", ctx, "ada@example.com").Return(user, nil)
	store.users.On("FindByID", ctx, user.ID).Return(user, nil)
	tokenStore.On("IsRevoked", ctx, mock.AnythingOfType("string")).Return(false, nil)

	_, err := svc.Register(ctx, RegisterInput{Email: "new@example.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.transactions)

	token, _, err := svc.Login(ctx, "ada@example.com", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, 2, store.transactions)

	_, err = svc.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, 3, store.transactions)
}
