package accounts_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accounts "github.com/lsolovey/go-accounts"
)

func newVerifiedUser(t *testing.T, password string) *accounts.User {
	t.Helper()

	hash, err := accounts.HashPassword(password)
	require.NoError(t, err)

	return &accounts.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        "user@example.com",
		PasswordHash: hash,
		Subscription: accounts.SubscriptionStarter,
		Verified:     true,
	}
}

func TestLogin(t *testing.T) {
	password := "securePassword123!"

	tests := []struct {
		name    string
		setup   func(t *testing.T, repo *MockRepositoryManager)
		email   string
		pass    string
		wantErr error
	}{
		{
			name: "Unknown email",
			setup: func(t *testing.T, repo *MockRepositoryManager) {
				repo.UsersRepo.On("GetByEmail", mock.Anything, "nobody@example.com").
					Return(nil, repository.NewRecordNotFound())
			},
			email:   "nobody@example.com",
			pass:    password,
			wantErr: accounts.ErrInvalidCredentials,
		},
		{
			name: "Unverified account",
			setup: func(t *testing.T, repo *MockRepositoryManager) {
				user := newVerifiedUser(t, password)
				user.Verified = false
				repo.UsersRepo.On("GetByEmail", mock.Anything, user.Email).
					Return(user, nil)
			},
			email:   "user@example.com",
			pass:    password,
			wantErr: accounts.ErrEmailNotVerified,
		},
		{
			name: "Wrong password",
			setup: func(t *testing.T, repo *MockRepositoryManager) {
				user := newVerifiedUser(t, password)
				repo.UsersRepo.On("GetByEmail", mock.Anything, user.Email).
					Return(user, nil)
			},
			email:   "user@example.com",
			pass:    "wrongPassword",
			wantErr: accounts.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepositoryManager()
			tt.setup(t, repo)

			auther := accounts.NewAuthenticator(repo, newTestConfig())

			token, err := auther.Login(context.Background(), tt.email, tt.pass)
			assert.Empty(t, token)
			assert.ErrorIs(t, err, tt.wantErr)

			repo.UsersRepo.AssertExpectations(t)
		})
	}
}

func TestLoginPersistsSessionToken(t *testing.T) {
	password := "securePassword123!"
	user := newVerifiedUser(t, password)

	repo := NewMockRepositoryManager()
	repo.UsersRepo.On("GetByEmail", mock.Anything, user.Email).
		Return(user, nil)
	repo.UsersRepo.On("StoreSessionToken", mock.Anything, user.ID, mock.AnythingOfType("string")).
		Return(nil)

	auther := accounts.NewAuthenticator(repo, newTestConfig())

	token, err := auther.Login(context.Background(), user.Email, password)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := auther.SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), session.GetUserID())

	repo.UsersRepo.AssertExpectations(t)
}

func TestLogout(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name    string
		setup   func(repo *MockRepositoryManager)
		userID  string
		wantErr error
	}{
		{
			name: "Success",
			setup: func(repo *MockRepositoryManager) {
				repo.UsersRepo.On("ClearSessionToken", mock.Anything, userID).
					Return(nil)
			},
			userID: userID.String(),
		},
		{
			name:    "Malformed id",
			setup:   func(repo *MockRepositoryManager) {},
			userID:  "not-a-uuid",
			wantErr: accounts.ErrTokenMalformed,
		},
		{
			name: "Unknown account",
			setup: func(repo *MockRepositoryManager) {
				repo.UsersRepo.On("ClearSessionToken", mock.Anything, userID).
					Return(repository.NewRecordNotFound())
			},
			userID:  userID.String(),
			wantErr: accounts.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockRepositoryManager()
			tt.setup(repo)

			auther := accounts.NewAuthenticator(repo, newTestConfig())

			err := auther.Logout(context.Background(), tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			repo.UsersRepo.AssertExpectations(t)
		})
	}
}

func TestUserFromSession(t *testing.T) {
	password := "securePassword123!"
	user := newVerifiedUser(t, password)

	repo := NewMockRepositoryManager()
	auther := accounts.NewAuthenticator(repo, newTestConfig())

	token, err := auther.TokenService().Generate(accounts.NewIdentityFromUser(user))
	require.NoError(t, err)

	session, err := auther.SessionFromToken(token)
	require.NoError(t, err)

	t.Run("Active session", func(t *testing.T) {
		user.SessionToken = token
		repo.UsersRepo.On("GetByID", mock.Anything, user.ID.String()).
			Return(user, nil).Once()

		got, err := auther.UserFromSession(context.Background(), session, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Superseded token", func(t *testing.T) {
		user.SessionToken = "a-different-active-token"
		repo.UsersRepo.On("GetByID", mock.Anything, user.ID.String()).
			Return(user, nil).Once()

		got, err := auther.UserFromSession(context.Background(), session, token)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, accounts.ErrTokenRevoked)
	})

	t.Run("Logged out", func(t *testing.T) {
		user.SessionToken = ""
		repo.UsersRepo.On("GetByID", mock.Anything, user.ID.String()).
			Return(user, nil).Once()

		got, err := auther.UserFromSession(context.Background(), session, token)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, accounts.ErrTokenRevoked)
	})

	t.Run("Account removed", func(t *testing.T) {
		repo.UsersRepo.On("GetByID", mock.Anything, user.ID.String()).
			Return(nil, repository.NewRecordNotFound()).Once()

		got, err := auther.UserFromSession(context.Background(), session, token)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, accounts.ErrTokenRevoked)
	})
}
