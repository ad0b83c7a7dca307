package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Subscription is the account's plan tier
type Subscription = string

const (
	// SubscriptionStarter is the default tier every account begins on
	SubscriptionStarter Subscription = "starter"
	// SubscriptionPro is the paid individual tier
	SubscriptionPro Subscription = "pro"
	// SubscriptionBusiness is the team tier
	SubscriptionBusiness Subscription = "business"
)

// ValidSubscription reports whether s names a known tier.
func ValidSubscription(s Subscription) bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is the account model. VerificationCode is non-empty exactly while the
// account is unverified; SessionToken holds the single active token and is
// empty when logged out.
type User struct {
	bun.BaseModel    `bun:"table:users,alias:usr"`
	ID               uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name             string       `bun:"name,notnull" json:"name,omitempty"`
	Email            string       `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash     string       `bun:"password_hash" json:"-"`
	Subscription     Subscription `bun:"subscription,notnull,default:'starter'" json:"subscription,omitempty"`
	AvatarURL        string       `bun:"avatar_url" json:"avatar_url,omitempty"`
	Verified         bool         `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	VerificationCode string       `bun:"verification_code" json:"-"`
	SessionToken     string       `bun:"session_token" json:"-"`
	CreatedAt        *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// LoggedIn reports whether the account currently holds an active session token.
func (u *User) LoggedIn() bool {
	return u != nil && u.SessionToken != ""
}

// Contact is an address-book entry owned by one account.
type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:cnt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Owner         *User      `bun:"rel:belongs-to,join:owner_id=id" json:"-"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	Phone         string     `bun:"phone,notnull" json:"phone,omitempty"`
	Favorite      bool       `bun:"favorite,notnull,default:false" json:"favorite"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}
