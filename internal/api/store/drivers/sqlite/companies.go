package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
)

type companiesRepo struct {
	db dbtx
}

const companyColumns = `
	id, name, slug, website, email, phone, address, city, state, country,
	logo, description, industry, size, founded_at, is_active, created_by,
	created_at, updated_at`

func (r *companiesRepo) CreateCompany(ctx context.Context, c domain.Company) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		c.ID, c.Name, c.Slug, c.Website, c.Email, c.Phone, c.Address,
		c.City, c.State, c.Country, c.Logo, c.Description, c.Industry,
		c.Size, mapOptionalTime(c.FoundedAt), c.IsActive,
		nullIfEmpty(c.CreatedBy), c.CreatedAt, c.UpdatedAt,
	)
	return mapErr(err)
}

func (r *companiesRepo) GetCompanyByID(ctx context.Context, id string) (domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE id = ?;`, id)
	return scanCompany(row)
}

func (r *companiesRepo) GetCompanyBySlug(ctx context.Context, slug string) (domain.Company, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE slug = ?;`, slug)
	return scanCompany(row)
}

func (r *companiesRepo) ListCompanies(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int, error) {
	where := ` WHERE 1 = 1`
	args := []any{}

	if f.Search != "" {
		where += ` AND (name LIKE ? OR description LIKE ? OR slug LIKE ?)`
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.Industry != "" {
		where += ` AND industry = ?`
		args = append(args, f.Industry)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM companies`+where+`;`, args...,
	).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + where +
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

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr(err)
	}
	return companies, total, nil
}

func (r *companiesRepo) UpdateCompany(ctx context.Context, c domain.Company) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies
		SET name = ?, slug = ?, website = ?, email = ?, phone = ?,
		    address = ?, city = ?, state = ?, country = ?, logo = ?,
		    description = ?, industry = ?, size = ?, founded_at = ?,
		    updated_at = ?
		WHERE id = ?;`,
		c.Name, c.Slug, c.Website, c.Email, c.Phone, c.Address, c.City,
		c.State, c.Country, c.Logo, c.Description, c.Industry, c.Size,
		mapOptionalTime(c.FoundedAt), time.Now().UTC(), c.ID,
	)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *companiesRepo) UpdateCompanyStatus(ctx context.Context, id string, isActive bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies
		SET is_active = ?, updated_at = ?
		WHERE id = ?;`,
		isActive, time.Now().UTC(), id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func (r *companiesRepo) DeleteCompany(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?;`, id)
	if err != nil {
		return mapErr(err)
	}
	return requireAffected(res)
}

func scanCompany(row rowScanner) (domain.Company, error) {
	var (
		c         domain.Company
		foundedAt sql.NullTime
		createdBy sql.NullString
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Website, &c.Email, &c.Phone,
		&c.Address, &c.City, &c.State, &c.Country, &c.Logo,
		&c.Description, &c.Industry, &c.Size, &foundedAt, &c.IsActive,
		&createdBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Company{}, mapErr(err)
	}
	c.FoundedAt = mapNullTime(foundedAt)
	c.CreatedBy = createdBy.String
	return c, nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
