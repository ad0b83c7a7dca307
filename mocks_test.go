package accounts_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	accounts "github.com/lsolovey/go-accounts"
)

// MockUsers implements accounts.Users. The embedded repository interface
// satisfies the generic CRUD surface; only methods the code under test calls
// are wired up.
type MockUsers struct {
	mock.Mock
	repository.Repository[*accounts.User]
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*accounts.User, error) {
	args := m.Called(ctx, tx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByVerificationCode(ctx context.Context, code string) (*accounts.User, error) {
	args := m.Called(ctx, code)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByVerificationCodeTx(ctx context.Context, tx bun.IDB, code string) (*accounts.User, error) {
	args := m.Called(ctx, tx, code)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) Register(ctx context.Context, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, user)
	created, _ := args.Get(0).(*accounts.User)
	return created, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, tx, user)
	created, _ := args.Get(0).(*accounts.User)
	return created, args.Error(1)
}

func (m *MockUsers) MarkVerified(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) MarkVerifiedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) StoreSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsers) StoreSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string) error {
	args := m.Called(ctx, tx, id, token)
	return args.Error(0)
}

func (m *MockUsers) ClearSessionToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) ClearSessionTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) UpdateSubscription(ctx context.Context, id uuid.UUID, subscription accounts.Subscription) (*accounts.User, error) {
	args := m.Called(ctx, id, subscription)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUsers) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) (*accounts.User, error) {
	args := m.Called(ctx, id, avatarURL)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

// MockContacts implements accounts.Contacts
type MockContacts struct {
	mock.Mock
	repository.Repository[*accounts.Contact]
}

func (m *MockContacts) CreateOwned(ctx context.Context, ownerID uuid.UUID, record *accounts.Contact) (*accounts.Contact, error) {
	args := m.Called(ctx, ownerID, record)
	contact, _ := args.Get(0).(*accounts.Contact)
	return contact, args.Error(1)
}

func (m *MockContacts) ListByOwner(ctx context.Context, ownerID uuid.UUID, favorite *bool) ([]*accounts.Contact, error) {
	args := m.Called(ctx, ownerID, favorite)
	records, _ := args.Get(0).([]*accounts.Contact)
	return records, args.Error(1)
}

func (m *MockContacts) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*accounts.Contact, error) {
	args := m.Called(ctx, ownerID, id)
	contact, _ := args.Get(0).(*accounts.Contact)
	return contact, args.Error(1)
}

func (m *MockContacts) UpdateByOwner(ctx context.Context, ownerID uuid.UUID, record *accounts.Contact) (*accounts.Contact, error) {
	args := m.Called(ctx, ownerID, record)
	contact, _ := args.Get(0).(*accounts.Contact)
	return contact, args.Error(1)
}

func (m *MockContacts) SetFavorite(ctx context.Context, ownerID, id uuid.UUID, favorite bool) (*accounts.Contact, error) {
	args := m.Called(ctx, ownerID, id, favorite)
	contact, _ := args.Get(0).(*accounts.Contact)
	return contact, args.Error(1)
}

func (m *MockContacts) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// MockRepositoryManager implements accounts.RepositoryManager. RunInTx runs
// the callback with a zero transaction; the store mocks ignore the tx handle.
type MockRepositoryManager struct {
	UsersRepo    *MockUsers
	ContactsRepo *MockContacts
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{
		UsersRepo:    &MockUsers{},
		ContactsRepo: &MockContacts{},
	}
}

func (m *MockRepositoryManager) Validate() error { return nil }
func (m *MockRepositoryManager) MustValidate()   {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() accounts.Users {
	return m.UsersRepo
}

func (m *MockRepositoryManager) Contacts() accounts.Contacts {
	return m.ContactsRepo
}

// MockMailer implements accounts.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email accounts.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockCodeIssuer implements accounts.CodeIssuer
type MockCodeIssuer struct {
	mock.Mock
}

func (m *MockCodeIssuer) Issue() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// testConfig implements accounts.Config
type testConfig struct {
	signingKey      string
	tokenExpiration int
	issuer          string
	baseURL         string
	sender          string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:      "test-signing-key",
		tokenExpiration: 23,
		issuer:          "accounts-test",
		baseURL:         "http://localhost:3000",
		sender:          "noreply@example.com",
	}
}

func (c *testConfig) GetSigningKey() string   { return c.signingKey }
func (c *testConfig) GetTokenExpiration() int { return c.tokenExpiration }
func (c *testConfig) GetIssuer() string       { return c.issuer }
func (c *testConfig) GetBaseURL() string      { return c.baseURL }
func (c *testConfig) GetSenderAddress() string {
	return c.sender
}
