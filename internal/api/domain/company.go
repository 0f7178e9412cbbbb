package domain

import "time"

// Company is a tenant: the isolation boundary for accounts, invitations
// and clients. Slug and name are globally unique.
type Company struct {
	ID          string
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
	IsActive    bool
	CreatedBy   string // account id; empty for seeded companies
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CompanyFilter narrows List results. Search matches name, description and
// slug case-insensitively.
type CompanyFilter struct {
	Search   string
	Industry string
	Skip     int
	Take     int
}
