package postgres

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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		inv.ID, inv.TokenHash, inv.CompanyID, inv.Email, string(inv.Role),
		inv.CreatedBy, inv.ExpiresAt, inv.CreatedAt,
	)
	return mapErr(err)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE token_hash = $1;`, hash)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetInvitationByEmail(ctx context.Context, companyID, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE company_id = $1 AND email = $2;`, companyID, email)
	return scanInvitation(row)
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1;`, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *invitationsRepo) DeleteExpiredInvitations(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE expires_at <= $1;`, now)
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
