package domain

import "strings"

// Location is the coarse geolocation of a network address.
type Location struct {
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Timezone    string   `json:"timezone,omitempty"`
}

// UnknownLocation is returned whenever a lookup cannot produce a result.
func UnknownLocation() Location {
	return Location{
		Country:     UnknownCountry,
		CountryCode: UnknownCountry,
		Region:      UnknownCountry,
		City:        UnknownCountry,
	}
}

// IsUnknown reports whether no country could be determined.
func (l Location) IsUnknown() bool {
	return l.Country == "" || l.Country == UnknownCountry
}

// String renders "City, Region, Country", skipping unknown parts.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.City, l.Region, l.Country} {
		if p != "" && p != UnknownCountry {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Unknown Location"
	}
	return strings.Join(parts, ", ")
}
