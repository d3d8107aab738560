package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cimillas/neighbourhood-map/services/api/internal/clock"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const (
	DefaultEventsBaseURL = "https://api.eventful.com"
	eventsSearchPath     = "/json/events/search"
	eventsWithinMiles    = 10
	eventsPageSize       = 40
)

// EventsClient searches local events around a place.
type EventsClient struct {
	baseURL string
	appKey  string
	http    *http.Client
	clock   clock.Clock
}

func NewEventsClient(baseURL, appKey string, httpClient *http.Client, clk clock.Clock) *EventsClient {
	if baseURL == "" {
		baseURL = DefaultEventsBaseURL
	}
	return &EventsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		appKey:  appKey,
		http:    httpClient,
		clock:   clk,
	}
}

// SearchEvents lists events within ten miles of place over the next year,
// earliest first. No events is an empty payload, not an error.
func (c *EventsClient) SearchEvents(ctx context.Context, place domain.Place) (domain.EventsPayload, error) {
	now := c.clock.Now()
	q := url.Values{}
	q.Set("app_key", c.appKey)
	q.Set("q", "events")
	q.Set("where", formatCoord(place.Lat)+","+formatCoord(place.Lng))
	q.Set("within", strconv.Itoa(eventsWithinMiles))
	q.Set("date", eventDate(now)+"-"+eventDate(now.AddDate(1, 0, 0)))
	q.Set("page_size", strconv.Itoa(eventsPageSize))
	q.Set("sort_order", "date")
	q.Set("sort_direction", "ascending")

	var resp eventsResponse
	if _, err := getJSON(ctx, c.http, c.baseURL+eventsSearchPath+"?"+q.Encode(), nil, &resp); err != nil {
		return domain.EventsPayload{}, err
	}
	if resp.Events == nil {
		return domain.EventsPayload{}, nil
	}

	records, err := decodeEvents(resp.Events.Event)
	if err != nil {
		return domain.EventsPayload{}, fmt.Errorf("%w: decode events: %v", domain.ErrNetwork, err)
	}
	out := domain.EventsPayload{Events: make([]domain.Event, 0, len(records))}
	for _, r := range records {
		out.Events = append(out.Events, r.toDomain())
	}
	return out, nil
}

func eventDate(t time.Time) string {
	return t.Format("20060102") + "00"
}

type eventsResponse struct {
	TotalItems string `json:"total_items"`
	Events     *struct {
		// Event is an array, or one bare object for a single match.
		Event json.RawMessage `json:"event"`
	} `json:"events"`
}

func decodeEvents(list json.RawMessage) ([]eventRecord, error) {
	raw := bytes.TrimSpace(list)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '{' {
		var one eventRecord
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		return []eventRecord{one}, nil
	}
	var many []eventRecord
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, err
	}
	return many, nil
}

type eventRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	StartTime    string `json:"start_time"`
	VenueID      string `json:"venue_id"`
	VenueName    string `json:"venue_name"`
	VenueURL     string `json:"venue_url"`
	VenueAddress string `json:"venue_address"`
	CityName     string `json:"city_name"`
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Image        *struct {
		Medium *struct {
			URL string `json:"url"`
		} `json:"medium"`
	} `json:"image"`
}

func (r eventRecord) toDomain() domain.Event {
	e := domain.Event{
		ID:           r.ID,
		Title:        r.Title,
		StartTime:    r.StartTime,
		VenueID:      r.VenueID,
		VenueName:    r.VenueName,
		VenueURL:     r.VenueURL,
		VenueAddress: r.VenueAddress,
		CityName:     r.CityName,
		Lat:          parseCoord(r.Latitude),
		Lng:          parseCoord(r.Longitude),
	}
	if r.Image != nil && r.Image.Medium != nil {
		e.ImageURL = r.Image.Medium.URL
	}
	return e
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
