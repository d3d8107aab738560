package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const (
	DefaultRestaurantsBaseURL = "https://developers.zomato.com"
	restaurantsSearchPath     = "/api/v2.1/search"
	restaurantsRadiusMeters   = 5000
)

// RestaurantsClient searches restaurants around a place.
type RestaurantsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewRestaurantsClient(baseURL, apiKey string, httpClient *http.Client) *RestaurantsClient {
	if baseURL == "" {
		baseURL = DefaultRestaurantsBaseURL
	}
	return &RestaurantsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

func (c *RestaurantsClient) SearchRestaurants(ctx context.Context, place domain.Place) (domain.RestaurantsPayload, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(place.Lat))
	q.Set("lon", formatCoord(place.Lng))
	q.Set("radius", strconv.Itoa(restaurantsRadiusMeters))

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("user-key", c.apiKey)

	var resp restaurantsResponse
	if _, err := getJSON(ctx, c.http, c.baseURL+restaurantsSearchPath+"?"+q.Encode(), header, &resp); err != nil {
		return domain.RestaurantsPayload{}, err
	}

	out := domain.RestaurantsPayload{Restaurants: make([]domain.Restaurant, 0, len(resp.Restaurants))}
	for _, item := range resp.Restaurants {
		r := item.Restaurant
		out.Restaurants = append(out.Restaurants, domain.Restaurant{
			ID:       r.ID,
			Name:     r.Name,
			Cuisines: r.Cuisines,
			Rating:   r.UserRating.AggregateRating,
			Address:  r.Location.Address,
			Zipcode:  r.Location.Zipcode,
			Lat:      parseCoord(r.Location.Latitude),
			Lng:      parseCoord(r.Location.Longitude),
		})
	}
	return out, nil
}

type restaurantsResponse struct {
	ResultsFound int `json:"results_found"`
	Restaurants  []struct {
		Restaurant struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			Cuisines   string `json:"cuisines"`
			UserRating struct {
				AggregateRating string `json:"aggregate_rating"`
			} `json:"user_rating"`
			Location struct {
				Address   string `json:"address"`
				Latitude  string `json:"latitude"`
				Longitude string `json:"longitude"`
				Zipcode   string `json:"zipcode"`
			} `json:"location"`
		} `json:"restaurant"`
	} `json:"restaurants"`
}
