package domain

import (
	"context"

	"github.com/google/uuid"
)

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	// GetBySubdomain covers tenants whose routing alias differs from their
	// durable id.
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
}

// EmployeeMatch is a record found by a cross-tenant query, annotated with
// the tenant that owns it.
type EmployeeMatch struct {
	Record   EmployeeRecord
	TenantID string
}

// EmployeeStore is the engine's view of the employee document sets. Field
// queries return all matches in no particular order; the resolution chain
// takes the first and logs the rest.
type EmployeeStore interface {
	Create(ctx context.Context, e *EmployeeRecord) error
	GetByID(ctx context.Context, id uuid.UUID, tenantID string) (*EmployeeRecord, error)
	// GetByUID is the keyed lookup inside one tenant (uid doubles as the
	// document key for records written after migration).
	GetByUID(ctx context.Context, tenantID, uid string) (*EmployeeRecord, error)
	FindByUID(ctx context.Context, tenantID, uid string) ([]EmployeeRecord, error)
	FindByUIDAcrossTenants(ctx context.Context, uid string) ([]EmployeeMatch, error)
	FindByEmailAcrossTenants(ctx context.Context, email string) ([]EmployeeMatch, error)
	FindByEmail(ctx context.Context, tenantID, email string) ([]EmployeeRecord, error)
	Update(ctx context.Context, e *EmployeeRecord) error
	// BindUID merge-writes the authenticated uid and refreshes the
	// last-login timestamp. Unconditional; last write wins.
	BindUID(ctx context.Context, id uuid.UUID, uid string) error
}

// LegacyEmployeeStore reads the pre-migration record set. It is
// read-mostly: the chain never creates legacy records, it only binds uids
// into them.
type LegacyEmployeeStore interface {
	GetByUID(ctx context.Context, tenantID, uid string) (*EmployeeRecord, error)
	FindByEmailAcrossTenants(ctx context.Context, email string) ([]EmployeeMatch, error)
	BindUID(ctx context.Context, id uuid.UUID, uid string) error
}

type ModuleStore interface {
	List(ctx context.Context) ([]ModuleDefinition, error)
}

type OverrideStore interface {
	ListByTenant(ctx context.Context, tenantID string) ([]TenantModuleOverride, error)
	// Set upserts an explicit enable/disable record.
	Set(ctx context.Context, o TenantModuleOverride) error
	// Clear removes the record, returning the module to the unset state.
	Clear(ctx context.Context, tenantID, moduleID string) error
}
