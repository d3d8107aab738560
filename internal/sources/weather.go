package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const (
	DefaultWeatherBaseURL = "https://api.worldweatheronline.com"
	weatherPath           = "/premium/v1/weather.ashx"
)

// WeatherClient reads the current condition and today's forecast.
type WeatherClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewWeatherClient(baseURL, apiKey string, httpClient *http.Client) *WeatherClient {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	return &WeatherClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// CurrentWeather returns at most one condition. An empty response body is
// an empty payload; an API-level error object is ErrNetwork.
func (c *WeatherClient) CurrentWeather(ctx context.Context, place domain.Place) (domain.WeatherPayload, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", formatCoord(place.Lat)+","+formatCoord(place.Lng))
	q.Set("format", "json")
	q.Set("num_of_days", "1")

	var resp weatherResponse
	ok, err := getJSON(ctx, c.http, c.baseURL+weatherPath+"?"+q.Encode(), nil, &resp)
	if err != nil {
		return domain.WeatherPayload{}, err
	}
	if !ok {
		return domain.WeatherPayload{}, nil
	}
	if len(resp.Data.Error) > 0 {
		return domain.WeatherPayload{}, fmt.Errorf("%w: %s", domain.ErrNetwork, resp.Data.Error[0].Msg)
	}
	if len(resp.Data.CurrentCondition) == 0 {
		return domain.WeatherPayload{}, nil
	}

	cur := resp.Data.CurrentCondition[0]
	w := domain.Weather{
		Description: firstValue(cur.WeatherDesc),
		IconURL:     firstValue(cur.WeatherIconURL),
		TempC:       parseCoord(cur.TempC),
	}
	if len(resp.Data.Weather) > 0 {
		w.MinTempC = parseCoord(resp.Data.Weather[0].MinTempC)
		w.MaxTempC = parseCoord(resp.Data.Weather[0].MaxTempC)
	}
	return domain.WeatherPayload{Conditions: []domain.Weather{w}}, nil
}

type valueList []struct {
	Value string `json:"value"`
}

func firstValue(v valueList) string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Value
}

type weatherResponse struct {
	Data struct {
		CurrentCondition []struct {
			TempC          string    `json:"temp_C"`
			WeatherDesc    valueList `json:"weatherDesc"`
			WeatherIconURL valueList `json:"weatherIconUrl"`
		} `json:"current_condition"`
		Weather []struct {
			MinTempC string `json:"mintempC"`
			MaxTempC string `json:"maxtempC"`
		} `json:"weather"`
		Error []struct {
			Msg string `json:"msg"`
		} `json:"error"`
	} `json:"data"`
}
