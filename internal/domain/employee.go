package domain

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeRecord is an employee of a tenant. UID is bound lazily: the first
// successful login writes the authenticated subject id into the record and
// every later successful login overwrites it (last-authenticated-uid-wins,
// no lock). That is the only durable state the resolution chain mutates.
type EmployeeRecord struct {
	ID             uuid.UUID `json:"id"`
	TenantID       string    `json:"tenant_id"`
	UID            string    `json:"uid,omitempty"`
	Email          string    `json:"email,omitempty"`
	PseudoEmail    string    `json:"pseudo_email,omitempty"`
	EmployeeNumber string    `json:"employee_number,omitempty"`
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
