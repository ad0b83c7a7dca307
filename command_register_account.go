package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	Subscription Subscription `json:"subscription"`
	UseHashid    bool

	// OnCreated receives the persisted account after the transaction commits.
	OnCreated func(u *User)
	// OnDeliveryError is invoked when the verification email fails to send.
	// The account stays created either way; the caller decides what to report.
	OnDeliveryError func(err error)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler creates an unverified account and dispatches the
// verification email. Hashing and code issuance happen inside the create
// transaction, so a persisted account always carries a usable code; the email
// goes out only after the commit and never rolls it back.
type RegisterAccountHandler struct {
	repo   RepositoryManager
	codes  CodeIssuer
	mailer Mailer
	cfg    Config
	logger Logger
}

func NewRegisterAccountHandler(repo RepositoryManager, codes CodeIssuer, mailer Mailer, cfg Config) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:   repo,
		codes:  codes,
		mailer: mailer,
		cfg:    cfg,
		logger: defLogger{},
	}
}

func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return ErrEmailInUse
		} else if !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing account")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		code, err := h.codes.Issue()
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue verification code")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Name = event.Name
		user.Subscription = event.Subscription
		user.Verified = false
		user.VerificationCode = code
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	// The account is committed; a delivery failure is reported, not rolled back.
	email := VerificationEmail(h.cfg.GetBaseURL(), user.Email, user.VerificationCode)
	if err := h.mailer.Send(ctx, email); err != nil {
		h.logger.Error("verification email dispatch failed", "email", user.Email, "error", err)
		if event.OnDeliveryError != nil {
			event.OnDeliveryError(err)
		}
	}

	if event.OnCreated != nil {
		event.OnCreated(user)
	}

	return nil
}
