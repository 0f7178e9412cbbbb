package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
	"github.com/opslane/clientdesk/internal/api/store"
	"github.com/opslane/clientdesk/pkg/idx"
	"github.com/opslane/clientdesk/pkg/slogx"
)

var (
	ErrInvalidCompanyRequest = errors.New("invalid company request")
	ErrCompanyExists         = errors.New("company name or slug already taken")
)

type CompanyService struct {
	Store store.Store
}

// CompanyRequest carries the writable company fields, shared by create
// and update.
type CompanyRequest struct {
	Name        string
	Slug        string
	Website     string
	Email       string
	Phone       string
	Address     string
	City        string
	State       string
	Country     string
	Logo        string
	Description string
	Industry    string
	Size        string
	FoundedAt   *time.Time
}

// CheckSlug reports whether a slug is still available. Public: the signup
// flow probes this before submitting.
func (s *CompanyService) CheckSlug(ctx context.Context, slug string) (bool, error) {
	if slug == "" {
		return false, ErrInvalidCompanyRequest
	}

	_, err := s.Store.Companies().GetCompanyBySlug(ctx, slug)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	return false, err
}

// Create registers a new company. This is the entry point of the tenant
// lifecycle: register the company, then sign accounts up into it.
// createdBy may be empty for self-service registration.
func (s *CompanyService) Create(ctx context.Context, req CompanyRequest, createdBy string) (domain.Company, error) {
	log := slogx.FromContext(ctx)

	if req.Name == "" || req.Slug == "" {
		return domain.Company{}, ErrInvalidCompanyRequest
	}

	now := time.Now().UTC()
	company := domain.Company{
		ID:          idx.New().String(),
		Name:        req.Name,
		Slug:        req.Slug,
		Website:     req.Website,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		Logo:        req.Logo,
		Description: req.Description,
		Industry:    req.Industry,
		Size:        req.Size,
		FoundedAt:   req.FoundedAt,
		IsActive:    true,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Companies().CreateCompany(ctx, company); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("company registration with taken name or slug",
				slog.String("slug", req.Slug),
			)
			return domain.Company{}, ErrCompanyExists
		}
		log.Error("failed to create company", slog.Any("error", err))
		return domain.Company{}, err
	}

	log.Info("company registered",
		slog.String("company_id", company.ID),
		slog.String("slug", company.Slug),
	)

	return company, nil
}

// List returns a page of companies matching the filter plus the total
// match count.
func (s *CompanyService) List(ctx context.Context, f domain.CompanyFilter) ([]domain.Company, int, error) {
	if f.Take <= 0 || f.Take > 100 {
		f.Take = 20
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return s.Store.Companies().ListCompanies(ctx, f)
}

func (s *CompanyService) GetByID(ctx context.Context, id string) (domain.Company, error) {
	return s.Store.Companies().GetCompanyByID(ctx, id)
}

// Update rewrites the writable fields of a company.
func (s *CompanyService) Update(ctx context.Context, id string, req CompanyRequest) (domain.Company, error) {
	log := slogx.FromContext(ctx)

	if req.Name == "" || req.Slug == "" {
		return domain.Company{}, ErrInvalidCompanyRequest
	}

	company, err := s.Store.Companies().GetCompanyByID(ctx, id)
	if err != nil {
		return domain.Company{}, err
	}

	company.Name = req.Name
	company.Slug = req.Slug
	company.Website = req.Website
	company.Email = req.Email
	company.Phone = req.Phone
	company.Address = req.Address
	company.City = req.City
	company.State = req.State
	company.Country = req.Country
	company.Logo = req.Logo
	company.Description = req.Description
	company.Industry = req.Industry
	company.Size = req.Size
	company.FoundedAt = req.FoundedAt

	if err := s.Store.Companies().UpdateCompany(ctx, company); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Company{}, ErrCompanyExists
		}
		log.Error("failed to update company", slog.Any("error", err))
		return domain.Company{}, err
	}

	log.Debug("company updated", slog.String("company_id", id))
	return company, nil
}

// UpdateStatus flips the active flag. Inactive companies reject signups.
func (s *CompanyService) UpdateStatus(ctx context.Context, id string, isActive bool) error {
	if err := s.Store.Companies().UpdateCompanyStatus(ctx, id, isActive); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("company status updated",
		slog.String("company_id", id),
		slog.Bool("is_active", isActive),
	)
	return nil
}

// Delete removes a company and, via cascading constraints, everything the
// tenant owns.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Companies().DeleteCompany(ctx, id); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("company deleted", slog.String("company_id", id))
	return nil
}
