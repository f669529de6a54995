package verify

import (
	"context"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/emailcraft/studio/internal/domain"
)

// Reasons reported for failed validations. These strings are part of the
// dispatch diagnostics contract and surface verbatim to callers.
const (
	ReasonInvalidFormat  = "Invalid format"
	ReasonNoMX           = "No MX records"
	ReasonDomainNotFound = "Domain not found"
)

// Deliberately permissive: something@something.something, no whitespace,
// exactly one group of non-@ runs around the separator. Full RFC 5322
// parsing rejects real-world addresses that deliver fine.
var addressRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Resolver is the DNS dependency of the validator. *net.Resolver satisfies
// it; tests inject a fake to avoid network I/O.
type Resolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Validator checks address syntax and MX presence. Safe for concurrent use.
type Validator struct {
	resolver Resolver
	timeout  time.Duration
	cache    MXCache
}

// Option configures a Validator.
type Option func(*Validator)

// WithResolver replaces the default net.Resolver.
func WithResolver(r Resolver) Option {
	return func(v *Validator) { v.resolver = r }
}

// WithTimeout sets the per-lookup DNS timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

// WithCache enables per-domain memoization of MX outcomes. The first
// occurrence of a domain always resolves; later occurrences within the
// cache TTL reuse the stored outcome.
func WithCache(c MXCache) Option {
	return func(v *Validator) { v.cache = c }
}

// New creates a validator with a 5 second DNS timeout and no cache.
func New(opts ...Option) *Validator {
	v := &Validator{
		resolver: &net.Resolver{},
		timeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks the address format, then the domain's MX records.
// The input is used as-is (not trimmed): an address with stray whitespace
// fails the format check like any other malformed input, and no DNS I/O
// happens for format failures.
func (v *Validator) Validate(ctx context.Context, address string) domain.Validation {
	if !addressRe.MatchString(address) {
		return domain.Validation{IsValid: false, Reason: ReasonInvalidFormat}
	}

	// The format check guarantees at least one "@"; the domain is
	// everything after the last one.
	dom := strings.ToLower(address[strings.LastIndex(address, "@")+1:])

	if v.cache != nil {
		if cached, ok := v.cache.Get(ctx, dom); ok {
			return cached
		}
	}

	result := v.lookupMX(ctx, dom)

	if v.cache != nil {
		v.cache.Set(ctx, dom, result)
	}
	return result
}

func (v *Validator) lookupMX(ctx context.Context, dom string) domain.Validation {
	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.resolver.LookupMX(lookupCtx, dom)
	if err != nil {
		// NXDOMAIN, timeout, SERVFAIL -- all reported, never raised.
		return domain.Validation{IsValid: false, Reason: ReasonDomainNotFound}
	}
	if len(records) == 0 {
		return domain.Validation{IsValid: false, Reason: ReasonNoMX}
	}
	return domain.Validation{IsValid: true}
}
