// Package geocode resolves coordinates to place names via OpenStreetMap
// Nominatim. Nominatim's usage policy allows one request per second, which
// the client enforces.
package geocode

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"truthlens/internal/infra/apiclient"
	"truthlens/internal/resilience/circuitbreaker"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Place is a reverse geocoding result.
type Place struct {
	// Area is the most specific of city, town, village, county or state.
	Area        string
	Country     string
	CountryCode string
}

// Name formats the place as "Area, Country", or just Area.
func (p Place) Name() string {
	if p.Country == "" {
		return p.Area
	}
	return p.Area + ", " + p.Country
}

// Nominatim is a reverse geocoding client.
type Nominatim struct {
	client  *apiclient.Client
	baseURL string
}

// NewNominatim creates a client. opts.UserAgent should identify the
// application, as Nominatim requires.
func NewNominatim(baseURL string, opts apiclient.Options) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.Name == "" {
		opts.Name = "geocode"
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond, opts.Burst = 1, 1
	}
	if opts.Breaker.Name == "" {
		opts.Breaker = circuitbreaker.GeocodeConfig()
	}
	return &Nominatim{client: apiclient.New(opts), baseURL: baseURL}
}

type reverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		County      string `json:"county"`
		State       string `json:"state"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

// Reverse looks up the place at lat/lon.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var resp reverseResponse
	if err := n.client.GetJSON(ctx, n.baseURL+"/reverse?"+q.Encode(), &resp); err != nil {
		return Place{}, err
	}
	if resp.Error != "" {
		return Place{}, fmt.Errorf("geocode: %s", resp.Error)
	}

	a := resp.Address
	area := firstNonEmpty(a.City, a.Town, a.Village, a.County, a.State)
	if area == "" {
		return Place{}, fmt.Errorf("geocode: no area for %.4f,%.4f", lat, lon)
	}
	return Place{Area: area, Country: a.Country, CountryCode: a.CountryCode}, nil
}

// AreaName returns the formatted place name, or "Location (lat, lon)" when
// the lookup fails. It never returns an error.
func (n *Nominatim) AreaName(ctx context.Context, lat, lon float64) string {
	place, err := n.Reverse(ctx, lat, lon)
	if err != nil {
		return CoordinatesName(lat, lon)
	}
	return place.Name()
}

// CoordinatesName is the fallback area label.
func CoordinatesName(lat, lon float64) string {
	return fmt.Sprintf("Location (%.2f, %.2f)", lat, lon)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
