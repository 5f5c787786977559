package service

import (
	"strings"

	"github.com/wachplan-io/wachplan/internal/domain"
)

// reservedLabels are routing names on the platform domain that never map to
// a customer tenant.
var reservedLabels = map[string]struct{}{
	"www":   {},
	"login": {},
	"admin": {},
}

// ResolveTenant derives a tenant id from a request hostname. Hostnames
// outside the platform domain, the bare platform domain, and reserved
// routing labels all fall back to the "admin" tenant. The leftmost label of
// any other subdomain is returned verbatim.
func ResolveTenant(hostname, platformDomain string) string {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	if !strings.HasSuffix(host, "."+platformDomain) {
		return domain.TenantAdmin
	}

	label := strings.SplitN(host, ".", 2)[0]
	if _, reserved := reservedLabels[label]; reserved || label == "" {
		return domain.TenantAdmin
	}
	return label
}
