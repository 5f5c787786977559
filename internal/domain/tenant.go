package domain

import "time"

const (
	// TenantAdmin is the fallback tenant for the platform's own domain and
	// for any hostname outside it.
	TenantAdmin = "admin"

	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

type Tenant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	// Subdomain is a routing alias; it usually equals ID but may differ for
	// tenants migrated from older hostnames.
	Subdomain string    `json:"subdomain"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
