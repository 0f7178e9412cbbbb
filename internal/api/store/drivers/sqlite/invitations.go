package sqlite

import (
	"context"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `
	id, token_hash, company_id, email, role, created_by, expires_at, created_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		inv.ID, inv.TokenHash, inv.CompanyID, inv.Email, string(inv.Role),
		inv.CreatedBy, inv.ExpiresAt, inv.CreatedAt,
	)
	return mapErr(err)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE token_hash = ?;`, hash)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByEmail(ctx context.Context, companyID, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE company_id = ? AND email = ?;`, companyID, email)
	return scanInvitation(row)
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?;`, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE expires_at <= ?;`, now)
	return mapErr(err)
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv  domain.Invitation
		role string
	)
	err := row.Scan(
		&inv.ID, &inv.TokenHash, &inv.CompanyID, &inv.Email, &role,
		&inv.CreatedBy, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapErr(err)
	}
	inv.Role = domain.Role(role)
	return inv, nil
}
