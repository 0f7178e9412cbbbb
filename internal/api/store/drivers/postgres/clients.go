package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `
	id, company_id, name, primary_contact_name, primary_contact_email,
	primary_contact_phone, company_email, notes, created_at, updated_at`

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
		c.ID, c.CompanyID, c.Name, c.PrimaryContactName,
		c.PrimaryContactEmail, c.PrimaryContactPhone, c.CompanyEmail,
		c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	return mapErr(err)
}

func (r *clientsRepo) GetClientByID(ctx context.Context, companyID, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE company_id = $1 AND id = $2;`, companyID, id)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context, companyID string, f domain.ClientFilter) ([]domain.Client, int, error) {
	where := ` WHERE company_id = $1`
	args := []any{companyID}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where += fmt.Sprintf(
			` AND (name ILIKE $%d OR primary_contact_name ILIKE $%d OR notes ILIKE $%d)`,
			len(args)+1, len(args)+2, len(args)+3)
		args = append(args, pattern, pattern, pattern)
	}
	if f.PrimaryContactEmail != "" {
		where += fmt.Sprintf(` AND primary_contact_email = $%d`, len(args)+1)
		args = append(args, f.PrimaryContactEmail)
	}
	if f.PrimaryContactPhone != "" {
		where += fmt.Sprintf(` AND primary_contact_phone = $%d`, len(args)+1)
		args = append(args, f.PrimaryContactPhone)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM clients`+where+`;`, args...,
	).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT ` + clientColumns + ` FROM clients` + where +
		` ORDER BY created_at DESC, id DESC`
	if f.Take > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, f.Take, f.Skip)
	}

	rows, err := r.db.QueryContext(ctx, query+`;`, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(err)
	}
	return clients, total, nil
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = $1, primary_contact_name = $2, primary_contact_email = $3,
		    primary_contact_phone = $4, company_email = $5, notes = $6,
		    updated_at = $7
		WHERE company_id = $8 AND id = $9;`,
		c.Name, c.PrimaryContactName, c.PrimaryContactEmail,
		c.PrimaryContactPhone, c.CompanyEmail, c.Notes,
		time.Now().UTC(), c.CompanyID, c.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE company_id = $1 AND id = $2;`, companyID, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func scanClient(row rowScanner) (domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.PrimaryContactName,
		&c.PrimaryContactEmail, &c.PrimaryContactPhone, &c.CompanyEmail,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapErr(err)
	}
	return c, nil
}
