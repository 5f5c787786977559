package domain

// Principal is the resolved identity of an authenticated subject for the
// current request. It is produced only by the resolution chain and never
// mutated after being returned.
type Principal struct {
	UID      string `json:"uid"`
	TenantID string `json:"tenant_id"`
	Role     Role   `json:"role"`
	Elevated bool   `json:"elevated"`
}
