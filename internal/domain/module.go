package domain

// Module ids with hard-coded visibility rules.
const (
	// ModuleHome is always visible, regardless of entitlement or role.
	ModuleHome = "home"
	// ModuleTenantDirectory lists all tenants and is restricted to
	// superadmins, regardless of entitlement state.
	ModuleTenantDirectory = "tenants"
)

// ModuleDefinition is an entry of the global module catalog. The catalog is
// platform-wide; per-tenant enablement lives in TenantModuleOverride.
type ModuleDefinition struct {
	ID           string   `json:"id"`
	AllowedRoles []string `json:"allowed_roles"`
	// IsFree marks modules visible by default when a tenant has no
	// override record for them.
	IsFree bool `json:"is_free"`
	Order  int  `json:"order"`
	Active bool `json:"active"`
}

// AllowsRole reports whether the module's allowed-role list contains the
// role. Comparison is case-insensitive.
func (m ModuleDefinition) AllowsRole(role Role) bool {
	for _, r := range m.AllowedRoles {
		if NormalizeRole(r) == role {
			return true
		}
	}
	return false
}

// TriState is the per-tenant enablement of a module. Absence of an override
// record means TriUnset.
type TriState int

const (
	TriUnset TriState = iota
	TriEnabled
	TriDisabled
)

func (t TriState) String() string {
	switch t {
	case TriEnabled:
		return "enabled"
	case TriDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// TenantModuleOverride is an explicit per-tenant enable/disable record,
// written only by tenant administrators.
type TenantModuleOverride struct {
	TenantID string `json:"tenant_id"`
	ModuleID string `json:"module_id"`
	Enabled  bool   `json:"enabled"`
}

// OverrideState folds a tenant's override records into a TriState lookup.
func OverrideState(overrides []TenantModuleOverride, moduleID string) TriState {
	for _, o := range overrides {
		if o.ModuleID == moduleID {
			if o.Enabled {
				return TriEnabled
			}
			return TriDisabled
		}
	}
	return TriUnset
}
