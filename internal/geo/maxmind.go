package geo

import (
	"context"
	"net"
	"net/netip"

	"ambassador-tracker/internal/domain"

	geoip2 "github.com/oschwald/geoip2-golang"
)

var _ Provider = (*MaxMindProvider)(nil)

// MaxMindProvider resolves addresses from a local GeoIP2/GeoLite2 City database.
type MaxMindProvider struct {
	db *geoip2.Reader
}

// NewMaxMindProvider opens the database file.
// Returns error if the database file cannot be opened or is corrupt.
func NewMaxMindProvider(dbPath string) (*MaxMindProvider, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &MaxMindProvider{db: db}, nil
}

func (m *MaxMindProvider) Name() string { return "maxmind" }

func (m *MaxMindProvider) Lookup(_ context.Context, addr netip.Addr) (domain.Location, error) {
	record, err := m.db.City(net.IP(addr.AsSlice()))
	if err != nil {
		return domain.Location{}, err
	}

	loc := domain.Location{
		Country:     orUnknown(record.Country.Names["en"]),
		CountryCode: orUnknown(record.Country.IsoCode),
		City:        orUnknown(record.City.Names["en"]),
		Region:      domain.UnknownCountry,
		Timezone:    record.Location.TimeZone,
	}
	if len(record.Subdivisions) > 0 {
		loc.Region = orUnknown(record.Subdivisions[0].Names["en"])
	}
	if record.Location.Latitude != 0 || record.Location.Longitude != 0 {
		lat, lon := record.Location.Latitude, record.Location.Longitude
		loc.Latitude, loc.Longitude = &lat, &lon
	}
	return loc, nil
}

// Close closes the database reader.
func (m *MaxMindProvider) Close() error {
	return m.db.Close()
}
