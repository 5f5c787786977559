package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wachplan-io/wachplan/internal/domain"
)

type mockModuleStore struct {
	catalog   []domain.ModuleDefinition
	listCalls int
	failErr   error
}

func (m *mockModuleStore) List(ctx context.Context) ([]domain.ModuleDefinition, error) {
	m.listCalls++
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.catalog, nil
}

type mockOverrideStore struct {
	byTenant map[string][]domain.TenantModuleOverride
	failErr  error
}

func newMockOverrideStore() *mockOverrideStore {
	return &mockOverrideStore{byTenant: make(map[string][]domain.TenantModuleOverride)}
}

func (m *mockOverrideStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.TenantModuleOverride, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	return m.byTenant[tenantID], nil
}

func (m *mockOverrideStore) Set(ctx context.Context, o domain.TenantModuleOverride) error {
	if m.failErr != nil {
		return m.failErr
	}
	for i, existing := range m.byTenant[o.TenantID] {
		if existing.ModuleID == o.ModuleID {
			m.byTenant[o.TenantID][i] = o
			return nil
		}
	}
	m.byTenant[o.TenantID] = append(m.byTenant[o.TenantID], o)
	return nil
}

func (m *mockOverrideStore) Clear(ctx context.Context, tenantID, moduleID string) error {
	if m.failErr != nil {
		return m.failErr
	}
	kept := m.byTenant[tenantID][:0]
	for _, o := range m.byTenant[tenantID] {
		if o.ModuleID != moduleID {
			kept = append(kept, o)
		}
	}
	m.byTenant[tenantID] = kept
	return nil
}

func moduleDef(id string, isFree bool, order int, roles ...string) domain.ModuleDefinition {
	return domain.ModuleDefinition{
		ID:           id,
		AllowedRoles: roles,
		IsFree:       isFree,
		Order:        order,
		Active:       true,
	}
}

func moduleIDs(modules []domain.ModuleDefinition) []string {
	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestEntitlement_TriStateTruthTable(t *testing.T) {
	cases := []struct {
		name    string
		isFree  bool
		enabled *bool
		visible bool
	}{
		{"free unset", true, nil, true},
		{"free enabled", true, boolPtr(true), true},
		{"free disabled", true, boolPtr(false), false},
		{"paid unset", false, nil, false},
		{"paid enabled", false, boolPtr(true), true},
		{"paid disabled", false, boolPtr(false), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			modules := &mockModuleStore{catalog: []domain.ModuleDefinition{
				moduleDef("dienstplan", tc.isFree, 1, "user"),
			}}
			overrides := newMockOverrideStore()
			if tc.enabled != nil {
				require.NoError(t, overrides.Set(context.Background(), domain.TenantModuleOverride{
					TenantID: "acme", ModuleID: "dienstplan", Enabled: *tc.enabled,
				}))
			}

			svc := NewEntitlementService(modules, overrides, time.Minute, testLogger())
			visible, err := svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
			require.NoError(t, err)

			if tc.visible {
				assert.Equal(t, []string{"dienstplan"}, moduleIDs(visible))
			} else {
				assert.Empty(t, visible)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func TestEntitlement_RoleGating(t *testing.T) {
	modules := &mockModuleStore{catalog: []domain.ModuleDefinition{
		moduleDef("dienstplan", true, 1, "user", "wachleitung"),
		moduleDef("abrechnung", true, 2, "Admin", "Supervisor"),
	}}
	svc := NewEntitlementService(modules, newMockOverrideStore(), time.Minute, testLogger())

	visible, err := svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, []string{"dienstplan"}, moduleIDs(visible))

	// Allowed-role comparison ignores case.
	visible, err = svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, []string{"abrechnung"}, moduleIDs(visible))
}

func TestEntitlement_OrderingAndSpecialModules(t *testing.T) {
	modules := &mockModuleStore{catalog: []domain.ModuleDefinition{
		moduleDef("abrechnung", true, 3, "user"),
		moduleDef(domain.ModuleHome, true, 0),
		moduleDef("dienstplan", true, 1, "user"),
		moduleDef(domain.ModuleTenantDirectory, false, 9),
		moduleDef("fahrzeuge", true, 2, "user"),
	}}
	svc := NewEntitlementService(modules, newMockOverrideStore(), time.Minute, testLogger())

	// Home is always present even though it lists no allowed roles; the
	// tenant directory only appears for superadmins.
	visible, err := svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ModuleHome, "dienstplan", "fahrzeuge", "abrechnung"}, moduleIDs(visible))

	visible, err = svc.VisibleModules(context.Background(), domain.Principal{TenantID: "admin", Role: domain.RoleSuperadmin})
	require.NoError(t, err)
	assert.Contains(t, moduleIDs(visible), domain.ModuleTenantDirectory)
}

func TestEntitlement_InactiveModulesSkipped(t *testing.T) {
	inactive := moduleDef("dienstplan", true, 1, "user")
	inactive.Active = false
	modules := &mockModuleStore{catalog: []domain.ModuleDefinition{inactive}}
	svc := NewEntitlementService(modules, newMockOverrideStore(), time.Minute, testLogger())

	visible, err := svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestEntitlement_DisableWinsOverFree(t *testing.T) {
	modules := &mockModuleStore{catalog: []domain.ModuleDefinition{
		moduleDef("dienstplan", true, 1, "user"),
	}}
	overrides := newMockOverrideStore()
	require.NoError(t, overrides.Set(context.Background(), domain.TenantModuleOverride{
		TenantID: "acme", ModuleID: "dienstplan", Enabled: false,
	}))
	svc := NewEntitlementService(modules, overrides, time.Minute, testLogger())

	visible, err := svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Empty(t, visible)

	// Clearing the override returns the free module to visible.
	require.NoError(t, svc.ClearOverride(context.Background(), "acme", "dienstplan"))
	visible, err = svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, []string{"dienstplan"}, moduleIDs(visible))
}

func TestEntitlement_CatalogCaching(t *testing.T) {
	modules := &mockModuleStore{catalog: []domain.ModuleDefinition{
		moduleDef("dienstplan", true, 1, "user"),
	}}
	svc := NewEntitlementService(modules, newMockOverrideStore(), 50*time.Millisecond, testLogger())
	p := domain.Principal{TenantID: "acme", Role: domain.RoleUser}

	_, err := svc.VisibleModules(context.Background(), p)
	require.NoError(t, err)
	_, err = svc.VisibleModules(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, modules.listCalls, "second read within TTL must hit the cache")

	time.Sleep(60 * time.Millisecond)
	_, err = svc.VisibleModules(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, modules.listCalls, "expired cache must refetch")
}

func TestEntitlement_ModuleStates(t *testing.T) {
	modules := &mockModuleStore{catalog: []domain.ModuleDefinition{
		moduleDef("dienstplan", true, 1, "user"),
		moduleDef("abrechnung", false, 2, "admin"),
		moduleDef("statistik", false, 3, "admin"),
	}}
	overrides := newMockOverrideStore()
	require.NoError(t, overrides.Set(context.Background(), domain.TenantModuleOverride{
		TenantID: "acme", ModuleID: "abrechnung", Enabled: true,
	}))
	require.NoError(t, overrides.Set(context.Background(), domain.TenantModuleOverride{
		TenantID: "acme", ModuleID: "dienstplan", Enabled: false,
	}))
	svc := NewEntitlementService(modules, overrides, time.Minute, testLogger())

	states, err := svc.ModuleStates(context.Background(), "acme")
	require.NoError(t, err)

	byID := make(map[string]ModuleState, len(states))
	for _, s := range states {
		byID[s.ModuleID] = s
	}
	assert.Equal(t, "disabled", byID["dienstplan"].State)
	assert.Equal(t, "enabled", byID["abrechnung"].State)
	assert.Equal(t, "unset", byID["statistik"].State)
}

func TestEntitlement_FetchErrors(t *testing.T) {
	modules := &mockModuleStore{failErr: errors.New("catalog down")}
	svc := NewEntitlementService(modules, newMockOverrideStore(), time.Minute, testLogger())
	_, err := svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	assert.ErrorContains(t, err, "load module catalog")

	overrides := newMockOverrideStore()
	overrides.failErr = errors.New("overrides down")
	svc = NewEntitlementService(&mockModuleStore{}, overrides, time.Minute, testLogger())
	_, err = svc.VisibleModules(context.Background(), domain.Principal{TenantID: "acme", Role: domain.RoleUser})
	assert.ErrorContains(t, err, "load tenant overrides")
}
