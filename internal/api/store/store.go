// Package store defines the data access interface implemented by the
// concrete drivers (sqlite, postgres). Sub-repositories keep concerns tidy
// and make transaction scoping explicit.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
)

var (
	// ErrNotFound reports a missing row within the caller's scope.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists reports a unique-constraint violation. Drivers map
	// their engine-specific constraint errors onto this so services can
	// translate to a conflict without knowing the engine.
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface.
type Store interface {
	Accounts() Accounts
	Companies() Companies
	Invitations() Invitations
	Clients() Clients

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Multi-step
	// operations that must be atomic (invitation consume + account
	// create) go through here.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases underlying resources.
	Close() error

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Nested transactions are not supported.
type Tx interface {
	Accounts() Accounts
	Companies() Companies
	Invitations() Invitations
	Clients() Clients
}

type Accounts interface {
	// CreateAccount inserts a new account (id is provided by the app via
	// ULID). Per-tenant email/username uniqueness violations surface as
	// ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail looks an account up within one tenant. A bare
	// email is never a key on its own.
	GetAccountByEmail(ctx context.Context, companyID, email string) (domain.Account, error)

	// UpdateOTP sets a fresh verification code and its expiry.
	UpdateOTP(ctx context.Context, accountID, code string, expiresAt time.Time) error

	// MarkVerified clears the OTP fields and flags the account verified.
	MarkVerified(ctx context.Context, accountID string) error

	// UpdateMFASecret stores the TOTP secret (enrollment, not yet active).
	UpdateMFASecret(ctx context.Context, accountID, secret string) error

	// EnableMFA stamps mfa_enabled_at.
	EnableMFA(ctx context.Context, accountID string) error

	// DisableMFA clears both the secret and the enabled stamp.
	DisableMFA(ctx context.Context, accountID string) error

	// ClearExpiredOTPs is housekeeping: drops OTP codes whose expiry has
	// passed. Correctness never depends on it.
	ClearExpiredOTPs(ctx context.Context, now time.Time) error
}

type Companies interface {
	CreateCompany(ctx context.Context, c domain.Company) error
	GetCompanyByID(ctx context.Context, id string) (domain.Company, error)
	GetCompanyBySlug(ctx context.Context, slug string) (domain.Company, error)

	// ListCompanies applies the filter and returns the page plus the
	// total match count.
	ListCompanies(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int, error)

	UpdateCompany(ctx context.Context, c domain.Company) error
	UpdateCompanyStatus(ctx context.Context, id string, isActive bool) error
	DeleteCompany(ctx context.Context, id string) error
}

type Invitations interface {
	// CreateInvitation writes a new invitation. The (company_id, email)
	// unique index is the arbiter for concurrent invites: one write wins,
	// the loser sees ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByTokenHash fetches by the SHA-256 fingerprint of the
	// opaque token. Expiry is the caller's problem; expired rows are
	// still returned.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// GetInvitationByEmail fetches the (at most one) invitation for an
	// email within a tenant.
	GetInvitationByEmail(ctx context.Context, companyID, email string) (domain.Invitation, error)

	DeleteInvitation(ctx context.Context, id string) error

	// DeleteExpiredInvitations is housekeeping.
	DeleteExpiredInvitations(ctx context.Context, now time.Time) error
}

type Clients interface {
	// CreateClient inserts a tenant-scoped client record. Per-tenant
	// contact email uniqueness violations surface as ErrAlreadyExists.
	CreateClient(ctx context.Context, c domain.Client) error

	// GetClientByID is scoped: an id belonging to another tenant behaves
	// as ErrNotFound.
	GetClientByID(ctx context.Context, companyID, id string) (domain.Client, error)

	ListClients(ctx context.Context, companyID string, f domain.ClientFilter) ([]domain.Client, int, error)

	UpdateClient(ctx context.Context, c domain.Client) error
	DeleteClient(ctx context.Context, companyID, id string) error
}
