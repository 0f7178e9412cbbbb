package http

import (
	"time"

	"github.com/opslane/clientdesk/internal/api/domain"
)

// Wire representations. Domain structs never cross the HTTP boundary
// directly; these decide exactly which fields leave the service.

type AccountResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	Address    string    `json:"address,omitempty"`
	Role       string    `json:"role"`
	CompanyID  string    `json:"company_id"`
	Verified   bool      `json:"verified"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Email:      a.Email,
		Username:   a.Username,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Address:    a.Address,
		Role:       string(a.Role),
		CompanyID:  a.CompanyID,
		Verified:   a.Verified,
		MFAEnabled: a.MFAEnabled(),
		CreatedAt:  a.CreatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func toTokenResponse(p domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(p.ExpiresIn.Seconds()),
	}
}

type CompanyResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Website     string     `json:"website,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Country     string     `json:"country,omitempty"`
	Logo        string     `json:"logo,omitempty"`
	Description string     `json:"description,omitempty"`
	Industry    string     `json:"industry,omitempty"`
	Size        string     `json:"size,omitempty"`
	FoundedAt   *time.Time `json:"founded_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toCompanyResponse(c domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Website:     c.Website,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		Country:     c.Country,
		Logo:        c.Logo,
		Description: c.Description,
		Industry:    c.Industry,
		Size:        c.Size,
		FoundedAt:   c.FoundedAt,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type CompanyListResponse struct {
	Companies []CompanyResponse `json:"companies"`
	Total     int               `json:"total"`
	Skip      int               `json:"skip"`
	Take      int               `json:"take"`
}

type ClientResponse struct {
	ID                  string    `json:"id"`
	CompanyID           string    `json:"company_id"`
	Name                string    `json:"name"`
	PrimaryContactName  string    `json:"primary_contact_name,omitempty"`
	PrimaryContactEmail string    `json:"primary_contact_email,omitempty"`
	PrimaryContactPhone string    `json:"primary_contact_phone,omitempty"`
	CompanyEmail        string    `json:"company_email,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func toClientResponse(c domain.Client) ClientResponse {
	return ClientResponse{
		ID:                  c.ID,
		CompanyID:           c.CompanyID,
		Name:                c.Name,
		PrimaryContactName:  c.PrimaryContactName,
		PrimaryContactEmail: c.PrimaryContactEmail,
		PrimaryContactPhone: c.PrimaryContactPhone,
		CompanyEmail:        c.CompanyEmail,
		Notes:               c.Notes,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

type ClientListResponse struct {
	Clients []ClientResponse `json:"clients"`
	Total   int              `json:"total"`
	Skip    int              `json:"skip"`
	Take    int              `json:"take"`
}
