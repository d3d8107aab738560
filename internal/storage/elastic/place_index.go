// Package elastic keeps a searchable copy of saved places in Elasticsearch.
package elastic

import (
	"context"
	"encoding/json"
	"fmt"

	es "github.com/olivere/elastic/v7"

	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
)

const DefaultIndex = "places"

const placesMapping = `{
	"mappings": {
		"properties": {
			"id":       {"type": "keyword"},
			"name":     {"type": "text"},
			"address":  {"type": "text"},
			"location": {"type": "geo_point"}
		}
	}
}`

type placeDoc struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Address  string      `json:"address"`
	Location es.GeoPoint `json:"location"`
}

func toDoc(p domain.Place) placeDoc {
	return placeDoc{
		ID:       p.ID,
		Name:     p.Name,
		Address:  p.Address,
		Location: es.GeoPoint{Lat: p.Lat, Lon: p.Lng},
	}
}

func (d placeDoc) place() domain.Place {
	return domain.Place{
		ID:      d.ID,
		Name:    d.Name,
		Address: d.Address,
		Lat:     d.Location.Lat,
		Lng:     d.Location.Lon,
	}
}

// NewClient connects to a single node without sniffing the cluster.
func NewClient(url string) (*es.Client, error) {
	client, err := es.NewClient(
		es.SetURL(url),
		es.SetSniff(false),
		es.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("elastic client: %w", err)
	}
	return client, nil
}

type PlaceIndex struct {
	client *es.Client
	index  string
}

func NewPlaceIndex(client *es.Client, index string) *PlaceIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &PlaceIndex{client: client, index: index}
}

// EnsureIndex creates the index with its geo_point mapping when missing.
func (p *PlaceIndex) EnsureIndex(ctx context.Context) error {
	exists, err := p.client.IndexExists(p.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", p.index, err)
	}
	if exists {
		return nil
	}
	res, err := p.client.CreateIndex(p.index).BodyString(placesMapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", p.index, err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("create index %s: not acknowledged", p.index)
	}
	return nil
}

func (p *PlaceIndex) IndexPlace(ctx context.Context, place domain.Place) error {
	_, err := p.client.Index().
		Index(p.index).
		Id(place.ID).
		BodyJson(toDoc(place)).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("index place %s: %w", place.ID, err)
	}
	return nil
}

// SearchAddress matches text against place names and addresses.
func (p *PlaceIndex) SearchAddress(ctx context.Context, text string, limit int) ([]domain.Place, error) {
	res, err := p.client.Search().
		Index(p.index).
		Query(es.NewMultiMatchQuery(text, "name", "address").Fuzziness("AUTO")).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search address: %w", err)
	}
	return decodeHits(res), nil
}

// Nearby returns the n indexed places closest to lat,lng.
func (p *PlaceIndex) Nearby(ctx context.Context, lat, lng float64, n int) ([]domain.Place, error) {
	res, err := p.client.Search().
		Index(p.index).
		Query(es.NewMatchAllQuery()).
		SortBy(es.NewGeoDistanceSort("location").
			Point(lat, lng).
			Asc().
			Unit("km").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		Size(n).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("nearby places: %w", err)
	}
	return decodeHits(res), nil
}

func decodeHits(res *es.SearchResult) []domain.Place {
	places := []domain.Place{}
	if res == nil || res.Hits == nil {
		return places
	}
	for _, hit := range res.Hits.Hits {
		var doc placeDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			continue
		}
		places = append(places, doc.place())
	}
	return places
}
