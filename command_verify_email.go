package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Code string `json:"code"`

	// OnVerified receives the account after the transition commits.
	OnVerified func(u *User)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

// VerifyEmailHandler consumes a one-time verification code. The lookup and
// the verified-flag flip run in one transaction, and MarkVerified clears the
// code in the same statement, so presenting the code a second time fails with
// the same error as an unknown code.
type VerifyEmailHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during email verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByVerificationCodeTx(ctx, tx, event.Code)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrVerificationNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up verification code")
		}

		if err := h.repo.Users().MarkVerifiedTx(ctx, tx, user.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark account verified")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	user.Verified = true
	user.VerificationCode = ""

	if event.OnVerified != nil {
		event.OnVerified(user)
	}

	return nil
}
