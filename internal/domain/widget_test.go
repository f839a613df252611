package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostFromURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://sub.example.com/page", want: "sub.example.com"},
		{in: "http://WWW.Example.com:8080/a?b=c", want: "www.example.com"},
		{in: "example.com/path", want: "example.com"},
		{in: "", wantErr: true},
		{in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := HostFromURL(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegrationLoad_MatchesHost(t *testing.T) {
	load := IntegrationLoad{Domain: "example.com", Timestamp: time.Now()}

	assert.True(t, load.MatchesHost("example.com"))
	assert.True(t, load.MatchesHost("sub.example.com"))
	assert.True(t, load.MatchesHost("EXAMPLE.com"))
	assert.False(t, load.MatchesHost("other.org"))
	assert.False(t, load.MatchesHost(""))

	www := IntegrationLoad{Domain: "www.example.com"}
	assert.True(t, www.MatchesHost("example.com"))
}

func TestWidget_OwnedBy(t *testing.T) {
	owner := "uni-1"
	w := &Widget{ID: "w1", UniversityID: &owner}

	assert.True(t, w.OwnedBy("uni-1"))
	assert.False(t, w.OwnedBy("uni-2"))
	assert.False(t, w.OwnedBy(""))
	assert.False(t, (&Widget{ID: "anon"}).OwnedBy("uni-1"))
}

func TestNormalizeConfig(t *testing.T) {
	cfg, err := NormalizeConfig(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(cfg))

	cfg, err = NormalizeConfig(json.RawMessage(`{ "selectedColor": "#fff" }`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"selectedColor":"#fff"}`, string(cfg))

	_, err = NormalizeConfig(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

func TestParseEventTime(t *testing.T) {
	ts, err := ParseEventTime("2025-01-08T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC), ts)

	ts, err = ParseEventTime("2025-01-08T10:30:45.123+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.Hour())

	for _, bad := range []string{"", "yesterday", "2025-01-08"} {
		_, err := ParseEventTime(bad)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, bad)
	}
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "Unknown Location", UnknownLocation().String())
	assert.True(t, UnknownLocation().IsUnknown())

	loc := Location{Country: "Germany", Region: "Berlin", City: "Berlin"}
	assert.Equal(t, "Berlin, Berlin, Germany", loc.String())
	assert.False(t, loc.IsUnknown())
}

func TestClickEvent_CountryLabel(t *testing.T) {
	c := &ClickEvent{}
	assert.Equal(t, UnknownCountry, c.CountryLabel())

	de := "Germany"
	c.Country = &de
	assert.Equal(t, "Germany", c.CountryLabel())
}
