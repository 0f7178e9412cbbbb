package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `
	id, company_id, email, username, first_name, last_name, address,
	password_hash, role, verified, otp, otp_expires_at,
	mfa_secret, mfa_enabled_at, created_at, updated_at`

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`,
		a.ID, a.CompanyID, a.Email, a.Username, a.FirstName, a.LastName,
		a.Address, a.PasswordHash, string(a.Role), a.Verified,
		mapOptionalString(a.OTP), mapOptionalTime(a.OTPExpiresAt),
		mapOptionalString(a.MFASecret), mapOptionalTime(a.MFAEnabledAt),
		a.CreatedAt, a.UpdatedAt,
	)
	return mapErr(err)
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1;`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, companyID, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE company_id = $1 AND email = $2;`, companyID, email)
	return scanAccount(row)
}

func (r *accountsRepo) UpdateOTP(ctx context.Context, accountID, code string, expiresAt time.Time) error {
	return r.exec(ctx, `
		UPDATE accounts
		SET otp = $1, otp_expires_at = $2, updated_at = $3
		WHERE id = $4;`,
		code, expiresAt, time.Now().UTC(), accountID)
}

func (r *accountsRepo) MarkVerified(ctx context.Context, accountID string) error {
	return r.exec(ctx, `
		UPDATE accounts
		SET verified = TRUE, otp = NULL, otp_expires_at = NULL, updated_at = $1
		WHERE id = $2;`,
		time.Now().UTC(), accountID)
}

func (r *accountsRepo) UpdateMFASecret(ctx context.Context, accountID, secret string) error {
	return r.exec(ctx, `
		UPDATE accounts
		SET mfa_secret = $1, updated_at = $2
		WHERE id = $3;`,
		secret, time.Now().UTC(), accountID)
}

func (r *accountsRepo) EnableMFA(ctx context.Context, accountID string) error {
	now := time.Now().UTC()
	return r.exec(ctx, `
		UPDATE accounts
		SET mfa_enabled_at = $1, updated_at = $2
		WHERE id = $3;`,
		now, now, accountID)
}

func (r *accountsRepo) DisableMFA(ctx context.Context, accountID string) error {
	return r.exec(ctx, `
		UPDATE accounts
		SET mfa_secret = NULL, mfa_enabled_at = NULL, updated_at = $1
		WHERE id = $2;`,
		time.Now().UTC(), accountID)
}

func (r *accountsRepo) ClearExpiredOTPs(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET otp = NULL, otp_expires_at = NULL
		WHERE otp_expires_at IS NOT NULL AND otp_expires_at <= $1;`, now)
	return mapErr(err)
}

func (r *accountsRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a            domain.Account
		role         string
		otp          sql.NullString
		otpExpiresAt sql.NullTime
		mfaSecret    sql.NullString
		mfaEnabledAt sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.Email, &a.Username, &a.FirstName,
		&a.LastName, &a.Address, &a.PasswordHash, &role, &a.Verified,
		&otp, &otpExpiresAt, &mfaSecret, &mfaEnabledAt,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	a.Role = domain.Role(role)
	a.OTP = mapNullString(otp)
	a.OTPExpiresAt = mapNullTime(otpExpiresAt)
	a.MFASecret = mapNullString(mfaSecret)
	a.MFAEnabledAt = mapNullTime(mfaEnabledAt)
	return a, nil
}
