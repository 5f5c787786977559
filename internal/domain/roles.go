package domain

import "strings"

type Role string

const (
	RoleSuperadmin            Role = "superadmin"
	RoleAdmin                 Role = "admin"
	RoleSupervisor            Role = "supervisor"
	RoleRettungsdienstleiter  Role = "rettungsdienstleiter"
	RoleWachleitung           Role = "wachleitung"
	RoleOvD                   Role = "ovd"
	RoleUser                  Role = "user"
)

var knownRoles = map[Role]struct{}{
	RoleSuperadmin:           {},
	RoleAdmin:                {},
	RoleSupervisor:           {},
	RoleRettungsdienstleiter: {},
	RoleWachleitung:          {},
	RoleOvD:                  {},
	RoleUser:                 {},
}

// NormalizeRole lower-cases and trims a raw role string. Anything outside
// the known role set downgrades to RoleUser; this is documented behavior,
// not an error.
func NormalizeRole(raw string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := knownRoles[r]; ok {
		return r
	}
	return RoleUser
}

func ValidRole(raw string) bool {
	_, ok := knownRoles[Role(strings.ToLower(strings.TrimSpace(raw)))]
	return ok
}
