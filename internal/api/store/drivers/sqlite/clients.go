package sqlite

import (
	"context"
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
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
		WHERE company_id = ? AND id = ?;`, companyID, id)
	return scanClient(row)
}

func (r *clientsRepo) ListClients(ctx context.Context, companyID string, f domain.ClientFilter) ([]domain.Client, int, error) {
	where := ` WHERE company_id = ?`
	args := []any{companyID}

	if f.Search != "" {
		where += ` AND (name LIKE ? OR primary_contact_name LIKE ? OR notes LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.PrimaryContactEmail != "" {
		where += ` AND primary_contact_email = ?`
		args = append(args, f.PrimaryContactEmail)
	}
	if f.PrimaryContactPhone != "" {
		where += ` AND primary_contact_phone = ?`
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
		query += ` LIMIT ? OFFSET ?`
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
		SET name = ?, primary_contact_name = ?, primary_contact_email = ?,
		    primary_contact_phone = ?, company_email = ?, notes = ?,
		    updated_at = ?
		WHERE company_id = ? AND id = ?;`,
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
		`DELETE FROM clients WHERE company_id = ? AND id = ?;`, companyID, id)
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
