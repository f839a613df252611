package domain

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// Widget is an embeddable widget registered by a university.
// Anonymous preview widgets have no owner.
type Widget struct {
	ID                 string
	UniversityID       *string
	Config             json.RawMessage
	Verified           bool
	LastVerifiedAt     *time.Time
	LastVerifiedDomain string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// OwnedBy reports whether the widget belongs to the given university.
func (w *Widget) OwnedBy(universityID string) bool {
	return w.UniversityID != nil && universityID != "" && *w.UniversityID == universityID
}

// NormalizeConfig returns a compact JSON object for the display configuration.
// An empty config is stored as "{}".
func NormalizeConfig(raw json.RawMessage) (json.RawMessage, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return json.RawMessage(`{}`), nil
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// HostFromURL extracts the lower-cased hostname from a page URL.
// Scheme-less input such as "example.com/page" is accepted.
func HostFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	return strings.ToLower(u.Hostname()), nil
}

// NormalizeDomain reduces a beacon-reported domain to a bare hostname.
func NormalizeDomain(domain string) string {
	if host, err := HostFromURL(domain); err == nil {
		return host
	}
	return strings.ToLower(strings.TrimSpace(domain))
}
