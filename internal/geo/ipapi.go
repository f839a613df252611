package geo

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/transport/http"
)

const (
	defaultIPAPIEndpoint = "http://ip-api.com"
	ipAPIFields          = "status,message,country,countryCode,region,city,lat,lon,timezone"
	userAgent            = "UniversityWidget/1.0"
)

var _ Provider = (*IPAPIProvider)(nil)

type ipAPIResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countryCode"`
	Region      string   `json:"region"`
	City        string   `json:"city"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Timezone    string   `json:"timezone"`
}

// IPAPIProvider queries the ip-api.com JSON endpoint.
type IPAPIProvider struct {
	client *http.Client
}

// NewIPAPIProvider dials the lookup service. An empty endpoint uses ip-api.com.
func NewIPAPIProvider(ctx context.Context, endpoint string, timeout time.Duration) (*IPAPIProvider, error) {
	if endpoint == "" {
		endpoint = defaultIPAPIEndpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client, err := http.NewClient(ctx,
		http.WithEndpoint(endpoint),
		http.WithTimeout(timeout),
		http.WithUserAgent(userAgent),
	)
	if err != nil {
		return nil, err
	}
	return &IPAPIProvider{client: client}, nil
}

func (p *IPAPIProvider) Name() string { return "ip-api" }

func (p *IPAPIProvider) Lookup(ctx context.Context, addr netip.Addr) (domain.Location, error) {
	var reply ipAPIResponse
	path := fmt.Sprintf("/json/%s?fields=%s", addr.String(), ipAPIFields)
	if err := p.client.Invoke(ctx, "GET", path, nil, &reply); err != nil {
		return domain.Location{}, err
	}
	if reply.Status == "fail" {
		return domain.Location{}, errors.New("ip-api: " + reply.Message)
	}

	return domain.Location{
		Country:     orUnknown(reply.Country),
		CountryCode: orUnknown(reply.CountryCode),
		Region:      orUnknown(reply.Region),
		City:        orUnknown(reply.City),
		Latitude:    reply.Lat,
		Longitude:   reply.Lon,
		Timezone:    reply.Timezone,
	}, nil
}

// Close releases the HTTP client.
func (p *IPAPIProvider) Close() error {
	return p.client.Close()
}

func orUnknown(s string) string {
	if s == "" {
		return domain.UnknownCountry
	}
	return s
}
