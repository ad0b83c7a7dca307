package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ResendVerificationMessage struct {
	Email string `json:"email"`
}

func (e ResendVerificationMessage) Type() string { return "account.resend_verification" }

// ResendVerificationHandler re-dispatches the verification email for an
// unverified account. The existing code is reused, never regenerated, so a
// link from the first email keeps working. Unlike registration, a delivery
// failure here is the whole point of the call and surfaces directly.
type ResendVerificationHandler struct {
	repo   RepositoryManager
	mailer Mailer
	cfg    Config
	logger Logger
}

func NewResendVerificationHandler(repo RepositoryManager, mailer Mailer, cfg Config) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (h *ResendVerificationHandler) WithLogger(logger Logger) *ResendVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification resend")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrEmailNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for resend")
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	email := VerificationEmail(h.cfg.GetBaseURL(), user.Email, user.VerificationCode)
	if err := h.mailer.Send(ctx, email); err != nil {
		h.logger.Error("verification email resend failed", "email", user.Email, "error", err)
		return err
	}

	return nil
}
