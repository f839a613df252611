package domain

import (
	"strings"
	"time"
)

// UnknownCountry is the bucket label for clicks without a resolved country.
const UnknownCountry = "Unknown"

// ClickEvent is a single chat-icon click captured by a widget beacon.
// Country is filled in asynchronously by the enrichment worker.
type ClickEvent struct {
	ID              string
	WidgetID        string
	Domain          string
	ClientAddress   string
	Country         *string
	AmbassadorID    *string
	AmbassadorName  *string
	Question1Answer *string
	Question2Answer *string
	ClickedAt       time.Time
	CreatedAt       time.Time
}

// CountryLabel returns the country or UnknownCountry when none was resolved yet.
func (c *ClickEvent) CountryLabel() string {
	if c.Country == nil || *c.Country == "" {
		return UnknownCountry
	}
	return *c.Country
}

// ClickAnswers carries the optional follow-up data a visitor submits after clicking.
type ClickAnswers struct {
	ClickID         string
	Question1Answer *string
	Question2Answer *string
	AmbassadorID    *string
	AmbassadorName  *string
}

// IsEmpty reports whether the answers carry nothing to store.
func (a ClickAnswers) IsEmpty() bool {
	return a.Question1Answer == nil && a.Question2Answer == nil &&
		a.AmbassadorID == nil && a.AmbassadorName == nil
}

// CountryCount is one row of the clicks-by-country breakdown.
type CountryCount struct {
	Country string
	Count   int64
}

// ParseEventTime parses a caller supplied ISO-8601 timestamp.
func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ErrInvalidTimestamp
	}
	return t.UTC(), nil
}

// OptionalString trims s and returns nil for blank input.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
