package service

import (
	"fmt"
	"strings"
)

// PseudoCredentials maps between (employee number, tenant id) and the
// synthetic login identifier used for employees who have no real email.
// The platform domain acts as the reserved suffix: a login identifier is a
// pseudo-credential iff it ends with it. Real emails are assumed never to
// carry that suffix; employee admin enforces this at write time.
type PseudoCredentials struct {
	Domain string
}

// Encode builds the synthetic login identifier
// "<employeeNumber>@<tenantID>.<domain>".
func (p PseudoCredentials) Encode(employeeNumber, tenantID string) string {
	return fmt.Sprintf("%s@%s.%s", employeeNumber, tenantID, p.Domain)
}

// IsPseudo reports whether a login identifier is a pseudo-credential. The
// suffix check is the sole discriminator used anywhere in the system.
func (p PseudoCredentials) IsPseudo(identifier string) bool {
	return strings.HasSuffix(strings.ToLower(identifier), "."+p.Domain)
}

// Decode splits a pseudo-credential back into its employee number and
// tenant id. ok is false when the identifier is not a pseudo-credential or
// is malformed.
func (p PseudoCredentials) Decode(identifier string) (employeeNumber, tenantID string, ok bool) {
	if !p.IsPseudo(identifier) {
		return "", "", false
	}
	at := strings.IndexByte(identifier, '@')
	if at <= 0 {
		return "", "", false
	}
	employeeNumber = identifier[:at]
	host := strings.ToLower(identifier[at+1:])
	tenantID = strings.TrimSuffix(host, "."+p.Domain)
	if tenantID == "" || strings.Contains(tenantID, ".") {
		return "", "", false
	}
	return employeeNumber, tenantID, true
}
