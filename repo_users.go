package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var MarkVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE,
	"verification_code" = ''
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var StoreSessionTokenSQL = `UPDATE "users" AS "usr"
SET
	"session_token" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users is the account store. MarkVerified flips the verified flag and clears
// the one-time code in a single statement so the two can never diverge.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByVerificationCode(ctx context.Context, code string) (*User, error)
	GetByVerificationCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	MarkVerified(ctx context.Context, id uuid.UUID) error
	MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	StoreSessionToken(ctx context.Context, id uuid.UUID, token string) error
	StoreSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error
	ClearSessionToken(ctx context.Context, id uuid.UUID) error
	ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	UpdateSubscription(ctx context.Context, id uuid.UUID, subscription Subscription) (*User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getByColumnTx(ctx, tx, "email", strings.TrimSpace(email))
}

func (a *users) GetByVerificationCode(ctx context.Context, code string) (*User, error) {
	return a.GetByVerificationCodeTx(ctx, a.db, code)
}

func (a *users) GetByVerificationCodeTx(ctx context.Context, tx bun.IDB, code string) (*User, error) {
	return a.getByColumnTx(ctx, tx, "verification_code", code)
}

func (a *users) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound()
	}

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return a.MarkVerifiedTx(ctx, a.db, id)
}

func (a *users) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return a.execReturningTx(ctx, tx, MarkVerifiedSQL, id.String())
}

func (a *users) StoreSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.StoreSessionTokenTx(ctx, a.db, id, token)
}

func (a *users) StoreSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	return a.execReturningTx(ctx, tx, StoreSessionTokenSQL, token, id.String())
}

func (a *users) ClearSessionToken(ctx context.Context, id uuid.UUID) error {
	return a.ClearSessionTokenTx(ctx, a.db, id)
}

func (a *users) ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return a.execReturningTx(ctx, tx, StoreSessionTokenSQL, "", id.String())
}

func (a *users) execReturningTx(ctx context.Context, tx bun.IDB, query string, args ...any) error {
	res, err := a.Repository.RawTx(ctx, tx, query, args...)
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound()
	}

	return nil
}

func (a *users) UpdateSubscription(ctx context.Context, id uuid.UUID, subscription Subscription) (*User, error) {
	record := &User{}
	record.ID = id
	record.Subscription = subscription

	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(id.String()))
}

func (a *users) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*User, error) {
	record := &User{}
	record.ID = id
	record.AvatarURL = avatarURL

	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(id.String()))
}

func prepareUserDefaults(user *User) {
	if user == nil {
		return
	}

	if user.Subscription == "" {
		user.Subscription = SubscriptionStarter
	}

	if user.AvatarURL == "" && user.Email != "" {
		user.AvatarURL = GravatarURL(user.Email)
	}
}
