package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wachplan-io/wachplan/internal/domain"
	"github.com/wachplan-io/wachplan/internal/store"
	"go.uber.org/zap"
)

// ElevationPolicy decides whether a principal whose record lives in a
// different tenant than the one addressed by the request may act there.
// Only platform superadmins cross tenant boundaries; they act as tenant
// admins on the tenant they are visiting.
type ElevationPolicy struct {
	tenants domain.TenantStore
	logger  *zap.Logger
}

func NewElevationPolicy(tenants domain.TenantStore, logger *zap.Logger) *ElevationPolicy {
	return &ElevationPolicy{tenants: tenants, logger: logger}
}

// Decide returns the tenant and role the principal finally acts under.
//
// Order matters: the superadmin check runs before the matched=="admin"
// short circuit, so a superadmin whose record lives in the platform tenant
// is elevated into the tenant they are visiting instead of being scoped
// back to "admin".
func (p *ElevationPolicy) Decide(ctx context.Context, requestedTenant, matchedTenant string, role domain.Role) (string, domain.Role, bool, error) {
	if matchedTenant == requestedTenant {
		return matchedTenant, role, false, nil
	}

	// Requests on the platform's own domain never elevate; the principal
	// stays scoped to wherever their record was found.
	if requestedTenant == domain.TenantAdmin {
		return matchedTenant, role, false, nil
	}

	if role == domain.RoleSuperadmin {
		target, err := p.lookupTenant(ctx, requestedTenant)
		switch {
		case err == nil:
			p.logger.Info("cross-tenant elevation granted",
				zap.String("requested_tenant", requestedTenant),
				zap.String("target_tenant", target.ID),
				zap.String("matched_tenant", matchedTenant),
			)
			return target.ID, domain.RoleAdmin, true, nil
		case errors.Is(err, store.ErrNotFound):
			// Unknown subdomain: fall through to the mismatch rules.
		default:
			return "", "", false, fmt.Errorf("%w: tenant lookup: %v", ErrResolutionFailed, err)
		}
	}

	// Platform staff without superadmin rights keep their home scope.
	if matchedTenant == domain.TenantAdmin {
		return matchedTenant, role, false, nil
	}

	p.logger.Warn("cross-tenant access denied",
		zap.String("requested_tenant", requestedTenant),
		zap.String("matched_tenant", matchedTenant),
		zap.String("role", string(role)),
	)
	return "", "", false, ErrUnauthorizedTenant
}

// lookupTenant resolves the requested label to a tenant, by id first and by
// subdomain alias second. Some tenants route under an alias that differs
// from their durable id.
func (p *ElevationPolicy) lookupTenant(ctx context.Context, label string) (*domain.Tenant, error) {
	t, err := p.tenants.GetByID(ctx, label)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return t, err
	}
	return p.tenants.GetBySubdomain(ctx, label)
}
