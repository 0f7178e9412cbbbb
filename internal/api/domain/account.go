package domain

import "time"

// Account is a user within a single company. Email and username are unique
// per company, not globally: the same address may sign up independently in
// two different tenants.
type Account struct {
	ID           string
	Email        string
	Username     string
	FirstName    string
	LastName     string
	Address      string
	PasswordHash string // argon2id encoded
	Role         Role
	CompanyID    string
	Verified     bool

	// OTP and OTPExpiresAt are set while email verification is pending
	// and nil otherwise. An unverified account always has both.
	OTP          *string
	OTPExpiresAt *time.Time

	// MFASecret holds the TOTP secret once enrolled; MFAEnabledAt is set
	// when the first code was verified and MFA became mandatory at login.
	MFASecret    *string
	MFAEnabledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MFAEnabled reports whether login requires a TOTP code.
func (a Account) MFAEnabled() bool {
	return a.MFAEnabledAt != nil && a.MFASecret != nil && *a.MFASecret != ""
}
