// Package geo resolves visitor network addresses to coarse locations.
package geo

import (
	"context"
	"net/netip"
	"strings"

	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
)

// Provider looks up a public address. Implementations may fail; the
// Resolver turns every failure into domain.UnknownLocation.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, addr netip.Addr) (domain.Location, error)
}

// Resolver classifies local and private addresses itself and delegates
// public ones to a Provider.
type Resolver struct {
	provider Provider
	log      *log.Helper
	observe  func(provider, outcome string)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithObserver reports every lookup outcome, e.g. to a metrics counter.
func WithObserver(fn func(provider, outcome string)) Option {
	return func(r *Resolver) { r.observe = fn }
}

// NewResolver creates a Resolver. A nil provider resolves every public
// address to an unknown location.
func NewResolver(provider Provider, logger log.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		provider: provider,
		log:      log.NewHelper(log.With(logger, "module", "geo")),
		observe:  func(string, string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve never fails: unparsable input, provider errors and timeouts all
// yield domain.UnknownLocation.
func (r *Resolver) Resolve(ctx context.Context, address string) domain.Location {
	addr, ok := ParseAddr(address)
	if !ok {
		r.observe("none", "invalid")
		return domain.UnknownLocation()
	}

	if loc, ok := classifyLocal(addr); ok {
		r.observe("none", "local")
		return loc
	}

	if r.provider == nil {
		r.observe("none", "disabled")
		return domain.UnknownLocation()
	}

	loc, err := r.provider.Lookup(ctx, addr)
	if err != nil {
		r.log.WithContext(ctx).Warnf("geolocation lookup failed for %s: %v", addr, err)
		r.observe(r.provider.Name(), "error")
		return domain.UnknownLocation()
	}
	if loc.IsUnknown() {
		r.observe(r.provider.Name(), "unknown")
		return domain.UnknownLocation()
	}

	r.log.WithContext(ctx).Debugf("geolocation lookup for %s: %s", addr, loc)
	r.observe(r.provider.Name(), "resolved")
	return loc
}

// ParseAddr normalizes a client address as reported by proxies and the
// HTTP server. IPv4-mapped IPv6 forms are unmapped, and "localhost" and the
// unspecified IPv6 address are treated as loopback.
func ParseAddr(address string) (netip.Addr, bool) {
	s := strings.TrimSpace(address)
	switch strings.ToLower(s) {
	case "", "unknown":
		return netip.Addr{}, false
	case "localhost", "::", "::1":
		return netip.AddrFrom4([4]byte{127, 0, 0, 1}), true
	}

	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	addr, err := netip.ParseAddr(strings.Trim(s, "[]"))
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	if addr.IsUnspecified() {
		return netip.AddrFrom4([4]byte{127, 0, 0, 1}), true
	}
	return addr, true
}

func classifyLocal(addr netip.Addr) (domain.Location, bool) {
	switch {
	case addr.IsLoopback():
		return domain.Location{
			Country:     "Localhost (Testing)",
			CountryCode: "TEST",
			Region:      "Local Development",
			City:        "Local Machine",
		}, true
	case addr.IsPrivate(), addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return domain.Location{
			Country:     "Private Network",
			CountryCode: "PRIVATE",
			Region:      domain.UnknownCountry,
			City:        domain.UnknownCountry,
		}, true
	}
	return domain.Location{}, false
}
