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
	ErrInvalidClientRequest = errors.New("invalid client request")
	ErrClientContactTaken   = errors.New("client contact email already in use")
)

// ClientService manages tenant-scoped client records. Every operation is
// filtered by the caller's company id; a client id from another tenant
// behaves as if it does not exist.
type ClientService struct {
	Store store.Store
}

// ClientRequest carries the writable client fields, shared by create and
// update.
type ClientRequest struct {
	Name                string
	PrimaryContactName  string
	PrimaryContactEmail string
	PrimaryContactPhone string
	CompanyEmail        string
	Notes               string
}

func (s *ClientService) Create(ctx context.Context, caller domain.Caller, req ClientRequest) (domain.Client, error) {
	log := slogx.FromContext(ctx)

	if req.Name == "" {
		return domain.Client{}, ErrInvalidClientRequest
	}

	// The owning company must exist; a dangling tenant reference is a
	// bad request, not a constraint blowup.
	if _, err := s.Store.Companies().GetCompanyByID(ctx, caller.CompanyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrInvalidCompany
		}
		return domain.Client{}, err
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:                  idx.New().String(),
		CompanyID:           caller.CompanyID,
		Name:                req.Name,
		PrimaryContactName:  req.PrimaryContactName,
		PrimaryContactEmail: req.PrimaryContactEmail,
		PrimaryContactPhone: req.PrimaryContactPhone,
		CompanyEmail:        req.CompanyEmail,
		Notes:               req.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.Store.Clients().CreateClient(ctx, client); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("client created with taken contact email",
				slog.String("company_id", caller.CompanyID),
			)
			return domain.Client{}, ErrClientContactTaken
		}
		log.Error("failed to create client", slog.Any("error", err))
		return domain.Client{}, err
	}

	log.Info("client created",
		slog.String("client_id", client.ID),
		slog.String("company_id", caller.CompanyID),
	)

	return client, nil
}

func (s *ClientService) List(ctx context.Context, caller domain.Caller, f domain.ClientFilter) ([]domain.Client, int, error) {
	if f.Take <= 0 || f.Take > 100 {
		f.Take = 20
	}
	if f.Skip < 0 {
		f.Skip = 0
	}
	return s.Store.Clients().ListClients(ctx, caller.CompanyID, f)
}

func (s *ClientService) GetByID(ctx context.Context, caller domain.Caller, id string) (domain.Client, error) {
	return s.Store.Clients().GetClientByID(ctx, caller.CompanyID, id)
}

func (s *ClientService) Update(ctx context.Context, caller domain.Caller, id string, req ClientRequest) (domain.Client, error) {
	log := slogx.FromContext(ctx)

	if req.Name == "" {
		return domain.Client{}, ErrInvalidClientRequest
	}

	client, err := s.Store.Clients().GetClientByID(ctx, caller.CompanyID, id)
	if err != nil {
		return domain.Client{}, err
	}

	client.Name = req.Name
	client.PrimaryContactName = req.PrimaryContactName
	client.PrimaryContactEmail = req.PrimaryContactEmail
	client.PrimaryContactPhone = req.PrimaryContactPhone
	client.CompanyEmail = req.CompanyEmail
	client.Notes = req.Notes

	if err := s.Store.Clients().UpdateClient(ctx, client); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Client{}, ErrClientContactTaken
		}
		log.Error("failed to update client", slog.Any("error", err))
		return domain.Client{}, err
	}

	log.Debug("client updated",
		slog.String("client_id", id),
		slog.String("company_id", caller.CompanyID),
	)
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if err := s.Store.Clients().DeleteClient(ctx, caller.CompanyID, id); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("client deleted",
		slog.String("client_id", id),
		slog.String("company_id", caller.CompanyID),
	)
	return nil
}
