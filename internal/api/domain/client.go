package domain

import "time"

// Client is a tenant-scoped business record owned by exactly one company.
// Contact email uniqueness is enforced per tenant.
type Client struct {
	ID                  string
	CompanyID           string
	Name                string
	PrimaryContactName  string
	PrimaryContactEmail string
	PrimaryContactPhone string
	CompanyEmail        string
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ClientFilter narrows List results within a tenant.
type ClientFilter struct {
	Search              string
	PrimaryContactEmail string
	PrimaryContactPhone string
	Skip                int
	Take                int
}
