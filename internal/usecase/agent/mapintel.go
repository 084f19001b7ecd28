package agent

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"truthlens/internal/domain/entity"
	"truthlens/internal/infra/geocode"
	"truthlens/internal/infra/search"
	"truthlens/internal/observability/logging"
	"truthlens/internal/observability/metrics"
	"truthlens/internal/observability/tracing"
)

const (
	defaultRadiusKM   = 25
	mapNewsLimit      = 20
	mapWebResults     = 10
	minNewsBeforeWeb  = 5
	recentWindow      = 48 * time.Hour
	earthRadiusKM     = 6371.0
	pinOffsetDegrees  = 0.01
	sourceTypeRSS     = "Google News RSS"
	sourceTypeWeb     = "Google"
	webResultSource   = "Google Search"
	categoryOther     = "Other"
	summaryNewsFormat = "Found %d news items within %gkm of %s"
)

// MapRequest is a point of interest with an optional topic keyword.
type MapRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKM  float64 `json:"radius_km"`
	Keyword   string  `json:"keyword"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewsPin is a news item placed on the map. Pins are spread around the
// center; their positions are indicative only.
type NewsPin struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	SourceType  string     `json:"source_type"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Location    LatLng     `json:"location"`
	DistanceKM  float64    `json:"distance_km"`
}

// MapResult is the map intelligence answer.
type MapResult struct {
	News            []NewsPin            `json:"news"`
	CategorizedNews map[string][]NewsPin `json:"categorized_news"`
	Area            string               `json:"area"`
	NearbyEvents    int                  `json:"nearby_events"`
	RadiusKM        float64              `json:"radius_km"`
	Center          LatLng               `json:"center"`
	Summary         string               `json:"summary"`
}

// MapIntelligenceAgent finds recent news about the area around a point.
type MapIntelligenceAgent struct {
	geocoder Geocoder
	news     NewsSearcher
	web      WebSearcher
	now      func() time.Time
}

// NewMapIntelligenceAgent creates the agent. Any collaborator may be nil.
func NewMapIntelligenceAgent(geocoder Geocoder, news NewsSearcher, web WebSearcher) *MapIntelligenceAgent {
	return &MapIntelligenceAgent{geocoder: geocoder, news: news, web: web, now: time.Now}
}

// Locate names the area around req's coordinate and collects news about it
// from the last two days. Search failures leave the result empty rather than
// failing it.
func (a *MapIntelligenceAgent) Locate(ctx context.Context, req MapRequest) (res *MapResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "agent.map_intelligence")
	defer span.End()
	defer func() {
		metrics.RecordAgentRequest("map_intelligence", err == nil)
		tracing.RecordError(span, err)
	}()

	if !validCoordinates(req.Latitude, req.Longitude) {
		return nil, ErrInvalidCoordinates
	}
	radius := req.RadiusKM
	if radius <= 0 {
		radius = defaultRadiusKM
	}
	center := LatLng{Lat: req.Latitude, Lng: req.Longitude}

	area := geocode.CoordinatesName(center.Lat, center.Lng)
	if a.geocoder != nil {
		area = a.geocoder.AreaName(ctx, center.Lat, center.Lng)
	}

	query := area
	if kw := strings.TrimSpace(req.Keyword); kw != "" {
		query = kw + " " + area
	}

	pins := a.findNearby(ctx, query, center)
	pins = filterRecent(pins, a.now().Add(-recentWindow))

	return &MapResult{
		News:            pins,
		CategorizedNews: categorize(pins),
		Area:            area,
		NearbyEvents:    len(pins),
		RadiusKM:        radius,
		Center:          center,
		Summary:         fmt.Sprintf(summaryNewsFormat, len(pins), radius, area),
	}, nil
}

// findNearby runs the news and web searches concurrently. Web results are
// only used when the news search found fewer than minNewsBeforeWeb items.
func (a *MapIntelligenceAgent) findNearby(ctx context.Context, query string, center LatLng) []NewsPin {
	logger := logging.FromContext(ctx)

	var (
		articles []entity.Article
		results  []search.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	if a.news != nil {
		g.Go(func() error {
			found, err := a.news.SearchNews(gctx, query, mapNewsLimit)
			if err != nil {
				logger.Warn("area news search failed", "query", query, "error", err)
				return nil
			}
			articles = found
			return nil
		})
	}
	if a.web != nil && a.web.Configured() {
		g.Go(func() error {
			found, err := a.web.Search(gctx, "news "+query+" latest", mapWebResults)
			if err != nil {
				logger.Warn("area web search failed", "query", query, "error", err)
				return nil
			}
			results = found
			return nil
		})
	}
	_ = g.Wait()

	pins := make([]NewsPin, 0, len(articles)+len(results))
	for i, art := range articles {
		loc := LatLng{Lat: center.Lat + float64(i)*pinOffsetDegrees, Lng: center.Lng + float64(i)*pinOffsetDegrees}
		pins = append(pins, NewsPin{
			Title:       art.Title,
			Description: art.Description,
			URL:         art.URL,
			Source:      art.SourceName,
			SourceType:  sourceTypeRSS,
			PublishedAt: art.PublishedAt,
			Location:    loc,
			DistanceKM:  roundKM(haversineKM(center, loc)),
		})
	}

	if len(pins) < minNewsBeforeWeb {
		for i, r := range results {
			loc := LatLng{Lat: center.Lat - float64(i+1)*pinOffsetDegrees, Lng: center.Lng - float64(i+1)*pinOffsetDegrees}
			pins = append(pins, NewsPin{
				Title:       r.Title,
				Description: r.Snippet,
				URL:         r.Link,
				Source:      webResultSource,
				SourceType:  sourceTypeWeb,
				Location:    loc,
				DistanceKM:  roundKM(haversineKM(center, loc)),
			})
		}
	}

	logger.Debug("area news collected", "query", query, "items", len(pins))
	return pins
}

// filterRecent keeps pins published at or after cutoff. Undated pins are kept.
func filterRecent(pins []NewsPin, cutoff time.Time) []NewsPin {
	out := make([]NewsPin, 0, len(pins))
	for _, p := range pins {
		if p.PublishedAt == nil || !p.PublishedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func haversineKM(a, b LatLng) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func roundKM(km float64) float64 {
	return math.Round(km*10) / 10
}
