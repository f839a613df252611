package domain

import (
	"strings"
	"time"
)

// LoadHistorySize is how many load beacons are retained per widget.
const LoadHistorySize = 10

// IntegrationLoad is a "widget loaded" beacon received from a host page.
type IntegrationLoad struct {
	Domain          string    `json:"domain"`
	Timestamp       time.Time `json:"timestamp"`
	ClientSignature string    `json:"userAgent"`
}

// MatchesHost reports whether the load was observed on host. The comparison
// is loose in both directions so that "www." and subdomain variants of the
// same site still match.
func (l IntegrationLoad) MatchesHost(host string) bool {
	d := strings.ToLower(strings.TrimSpace(l.Domain))
	host = strings.ToLower(strings.TrimSpace(host))
	if d == "" || host == "" {
		return false
	}
	return d == host || strings.Contains(host, d) || strings.Contains(d, host)
}
