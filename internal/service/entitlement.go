package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wachplan-io/wachplan/internal/domain"
	"go.uber.org/zap"
)

// EntitlementService computes the modules a principal may see: the global
// catalog filtered through per-tenant overrides (tri-state: explicitly
// enabled, explicitly disabled, or unset) and the principal's role.
//
// The catalog changes rarely and is cached with an explicit TTL on the
// service value; override reads are never cached so admin edits take
// effect immediately.
type EntitlementService struct {
	modules   domain.ModuleStore
	overrides domain.OverrideStore
	logger    *zap.Logger
	ttl       time.Duration

	mu        sync.Mutex
	cached    []domain.ModuleDefinition
	fetchedAt time.Time
}

func NewEntitlementService(modules domain.ModuleStore, overrides domain.OverrideStore, catalogTTL time.Duration, logger *zap.Logger) *EntitlementService {
	return &EntitlementService{
		modules:   modules,
		overrides: overrides,
		ttl:       catalogTTL,
		logger:    logger,
	}
}

// VisibleModules returns the ordered module list for the principal. The
// catalog and the tenant's overrides are independent reads and are fetched
// concurrently; the combination step itself is pure.
func (s *EntitlementService) VisibleModules(ctx context.Context, p domain.Principal) ([]domain.ModuleDefinition, error) {
	var (
		catalog      []domain.ModuleDefinition
		overrides    []domain.TenantModuleOverride
		catalogErr   error
		overridesErr error
		wg           sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		catalog, catalogErr = s.catalog(ctx)
	}()
	go func() {
		defer wg.Done()
		overrides, overridesErr = s.overrides.ListByTenant(ctx, p.TenantID)
	}()
	wg.Wait()

	if catalogErr != nil {
		return nil, fmt.Errorf("load module catalog: %w", catalogErr)
	}
	if overridesErr != nil {
		return nil, fmt.Errorf("load tenant overrides: %w", overridesErr)
	}

	visible := computeVisible(p, catalog, overrides)

	s.logger.Debug("entitlements computed",
		zap.String("tenant_id", p.TenantID),
		zap.String("role", string(p.Role)),
		zap.Int("visible", len(visible)),
	)
	return visible, nil
}

// ListOverrides exposes the raw override records for the admin surface.
func (s *EntitlementService) ListOverrides(ctx context.Context, tenantID string) ([]domain.TenantModuleOverride, error) {
	return s.overrides.ListByTenant(ctx, tenantID)
}

// ModuleState pairs a catalog module with a tenant's tri-state for it.
type ModuleState struct {
	ModuleID string `json:"module_id"`
	State    string `json:"state"`
	IsFree   bool   `json:"is_free"`
}

// ModuleStates reports the tri-state of every active catalog module for a
// tenant, so admins see what an unset module would do before toggling it.
func (s *EntitlementService) ModuleStates(ctx context.Context, tenantID string) ([]ModuleState, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load module catalog: %w", err)
	}
	overrides, err := s.overrides.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant overrides: %w", err)
	}

	states := make([]ModuleState, 0, len(catalog))
	for _, m := range catalog {
		if !m.Active {
			continue
		}
		states = append(states, ModuleState{
			ModuleID: m.ID,
			State:    domain.OverrideState(overrides, m.ID).String(),
			IsFree:   m.IsFree,
		})
	}
	return states, nil
}

// SetOverride upserts an explicit enable/disable record for a module.
func (s *EntitlementService) SetOverride(ctx context.Context, o domain.TenantModuleOverride) error {
	return s.overrides.Set(ctx, o)
}

// ClearOverride removes the record, returning the module to unset.
func (s *EntitlementService) ClearOverride(ctx context.Context, tenantID, moduleID string) error {
	return s.overrides.Clear(ctx, tenantID, moduleID)
}

func (s *EntitlementService) catalog(ctx context.Context) ([]domain.ModuleDefinition, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.ttl {
		cached := s.cached
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	catalog, err := s.modules.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cached = catalog
	s.fetchedAt = time.Now()
	s.mu.Unlock()
	return catalog, nil
}

// computeVisible applies the entitlement rules to one principal.
//
//   - inactive catalog entries are skipped outright
//   - explicit disable always wins, even over is_free
//   - is_free modules are visible while unset
//   - role gating is case-insensitive
//   - the home module is always included; the tenant directory is
//     superadmin-only regardless of entitlement state
//
// The result is sorted by catalog order ascending, ties keeping catalog
// input order.
func computeVisible(p domain.Principal, catalog []domain.ModuleDefinition, overrides []domain.TenantModuleOverride) []domain.ModuleDefinition {
	visible := make([]domain.ModuleDefinition, 0, len(catalog))

	for _, m := range catalog {
		if !m.Active {
			continue
		}

		switch m.ID {
		case domain.ModuleHome:
			visible = append(visible, m)
			continue
		case domain.ModuleTenantDirectory:
			if p.Role == domain.RoleSuperadmin {
				visible = append(visible, m)
			}
			continue
		}

		state := domain.OverrideState(overrides, m.ID)
		enabled := state == domain.TriEnabled || (m.IsFree && state == domain.TriUnset)
		if !enabled || !m.AllowsRole(p.Role) {
			continue
		}
		visible = append(visible, m)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].Order < visible[j].Order
	})
	return visible
}
