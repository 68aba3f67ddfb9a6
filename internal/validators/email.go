package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

// Resolver is the subset of *net.Resolver used for domain checks.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// EmailDomain is the lowercased part after the last "@", or "".
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// IsEmailDomainValid reports whether the address's domain can receive mail:
// it has an MX record or, failing that, resolves at all. Single-label
// domains are rejected without a lookup.
func IsEmailDomainValid(ctx context.Context, r Resolver, email string) bool {
	domain := EmailDomain(email)
	if domain == "" || !strings.Contains(strings.Trim(domain, "."), ".") {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	ips, err := r.LookupIPAddr(ctx, domain)
	return err == nil && len(ips) > 0
}
