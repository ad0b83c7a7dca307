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

func TestVerifyEmail(t *testing.T) {
	repo := NewMockRepositoryManager()

	user := &accounts.User{
		ID:               uuid.New(),
		Email:            "user@example.com",
		VerificationCode: "code123",
	}

	repo.UsersRepo.On("GetByVerificationCodeTx", mock.Anything, mock.Anything, "code123").
		Return(user, nil)
	repo.UsersRepo.On("MarkVerifiedTx", mock.Anything, mock.Anything, user.ID).
		Return(nil)

	var verified *accounts.User
	msg := accounts.VerifyEmailMessage{
		Code: "code123",
		OnVerified: func(u *accounts.User) {
			verified = u
		},
	}

	handler := accounts.NewVerifyEmailHandler(repo)
	err := handler.Execute(context.Background(), msg)
	require.NoError(t, err)

	require.NotNil(t, verified)
	assert.True(t, verified.Verified)
	assert.Empty(t, verified.VerificationCode)

	repo.UsersRepo.AssertExpectations(t)
}

func TestVerifyEmailUnknownCode(t *testing.T) {
	repo := NewMockRepositoryManager()

	repo.UsersRepo.On("GetByVerificationCodeTx", mock.Anything, mock.Anything, "consumed-or-bogus").
		Return(nil, repository.NewRecordNotFound())

	handler := accounts.NewVerifyEmailHandler(repo)
	err := handler.Execute(context.Background(), accounts.VerifyEmailMessage{Code: "consumed-or-bogus"})

	assert.ErrorIs(t, err, accounts.ErrVerificationNotFound)
	repo.UsersRepo.AssertNotCalled(t, "MarkVerifiedTx", mock.Anything, mock.Anything, mock.Anything)
}
