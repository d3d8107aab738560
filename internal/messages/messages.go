// Package messages holds the user-visible strings placed in synthetic
// records, localizable through go-i18n message files.
package messages

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	noEvents = &i18n.Message{
		ID:    "NoEvents",
		Other: "No events found for this location",
	}
	noRestaurants = &i18n.Message{
		ID:    "NoRestaurants",
		Other: "No restaurants found for this location",
	}
	noWeather = &i18n.Message{
		ID:    "NoWeather",
		Other: "No weather data found for this location",
	}
	requestFailed = &i18n.Message{
		ID:    "RequestFailed",
		Other: "Something went wrong while processing the data request. {{.Detail}}",
	}
	timedOut = &i18n.Message{
		ID:    "TimedOut",
		Other: "A timeout has occurred. The server took too long to respond, the request has been aborted.",
	}
	authFailed = &i18n.Message{
		ID:    "AuthFailed",
		Other: "There was an error during authentication. The app is not connected to the database!",
	}
	placesUnavailable = &i18n.Message{
		ID:    "PlacesUnavailable",
		Other: "Places data request error: something went wrong while processing the data request.",
	}
)

// Catalog localizes the fixed messages. The zero value is not usable; use New.
type Catalog struct {
	localizer *i18n.Localizer
}

// New returns an English catalog.
func New() *Catalog {
	bundle := i18n.NewBundle(language.English)
	return &Catalog{localizer: i18n.NewLocalizer(bundle, language.English.String())}
}

// Load reads every *.toml message file in dir (for example active.fr.toml)
// and returns a catalog preferring lang, falling back to English.
func Load(dir, lang string) (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("list message files: %w", err)
	}
	for _, path := range files {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read message file %s: %w", path, err)
		}
		if _, err := bundle.ParseMessageFileBytes(buf, path); err != nil {
			return nil, fmt.Errorf("parse message file %s: %w", path, err)
		}
	}

	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Catalog{localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String())}, nil
}

func (c *Catalog) NoEvents() string      { return c.localize(noEvents, nil) }
func (c *Catalog) NoRestaurants() string { return c.localize(noRestaurants, nil) }
func (c *Catalog) NoWeather() string     { return c.localize(noWeather, nil) }
func (c *Catalog) TimedOut() string      { return c.localize(timedOut, nil) }
func (c *Catalog) AuthFailed() string    { return c.localize(authFailed, nil) }

func (c *Catalog) PlacesUnavailable() string { return c.localize(placesUnavailable, nil) }

// RequestFailed is the generic failure text followed by detail.
func (c *Catalog) RequestFailed(detail string) string {
	return c.localize(requestFailed, map[string]string{"Detail": detail})
}

func (c *Catalog) localize(msg *i18n.Message, data map[string]string) string {
	out, err := c.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: msg,
		TemplateData:   data,
	})
	if err != nil && out == "" {
		return msg.Other
	}
	return out
}
