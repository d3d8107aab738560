package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/neighbourhood-map/services/api/internal/app"
	"github.com/cimillas/neighbourhood-map/services/api/internal/auth"
	"github.com/cimillas/neighbourhood-map/services/api/internal/clock"
	"github.com/cimillas/neighbourhood-map/services/api/internal/config"
	"github.com/cimillas/neighbourhood-map/services/api/internal/domain"
	"github.com/cimillas/neighbourhood-map/services/api/internal/messages"
	"github.com/cimillas/neighbourhood-map/services/api/internal/session"
	"github.com/cimillas/neighbourhood-map/services/api/internal/sources"
	"github.com/cimillas/neighbourhood-map/services/api/internal/storage/elastic"
	"github.com/cimillas/neighbourhood-map/services/api/internal/storage/postgres"
	transporthttp "github.com/cimillas/neighbourhood-map/services/api/internal/transport/http"
	"github.com/cimillas/neighbourhood-map/services/api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	cfg, err := config.Load(logger)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	catalog := messages.New()
	if cfg.LocalesDir != "" {
		catalog, err = messages.Load(cfg.LocalesDir, cfg.Language)
		if err != nil {
			log.Fatalf("load messages: %v", err)
		}
	}

	var searcher app.PlaceSearcher
	placesOpts := []app.PlacesServiceOption{app.WithPlacesLogger(logger)}
	if index := newPlaceIndex(startupCtx, cfg, logger); index != nil {
		searcher = index
		placesOpts = append(placesOpts, app.WithSearcher(index))
	}
	placesSvc := app.NewPlacesService(postgres.NewPlacesRepository(pool), placesOpts...)

	httpClient, err := sources.NewHTTPClient()
	if err != nil {
		log.Fatalf("http client: %v", err)
	}
	srcs := app.Sources{
		Events:      sources.NewEventsClient(cfg.Events.BaseURL, cfg.Events.APIKey, httpClient, clock.NewSystem()),
		Weather:     sources.NewWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, httpClient),
		Restaurants: sources.NewRestaurantsClient(cfg.Restaurants.BaseURL, cfg.Restaurants.APIKey, httpClient),
	}

	registry := session.NewRegistry(srcs, placesSvc,
		session.WithIdleTTL(cfg.SessionIdleTTL.Duration),
		session.WithMessages(catalog),
		session.WithLogger(logger),
		session.WithDataOptions(dataOptions(cfg)...),
	)
	sessions := transporthttp.RegistrySessions{Registry: registry}

	issuer, err := auth.NewIssuer([]byte(cfg.JWTSigningKey), clock.NewSystem())
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}
	protect := func(h http.Handler) http.Handler {
		return auth.Middleware(issuer, h)
	}

	mux := http.NewServeMux()
	mux.Handle("/health", transporthttp.HealthHandler(pool))
	mux.Handle("/auth/anonymous", transporthttp.HandleAnonymousSignIn(issuer))
	mux.Handle("/places", protect(transporthttp.HandlePlaces(sessions)))
	mux.Handle("/places/", protect(transporthttp.HandlePlace(sessions)))
	mux.Handle("/search", protect(transporthttp.HandleSearch(sessions)))
	mux.Handle("/search/nearby", protect(transporthttp.HandleNearby(placesSvc)))
	mux.Handle("/navigate", protect(transporthttp.HandleNavigate(sessions)))
	mux.Handle("/view", protect(transporthttp.HandleView(sessions)))
	mux.Handle("/view/filter", protect(transporthttp.HandleFilter(sessions)))
	mux.Handle("/view/tab-places", protect(transporthttp.HandleTabPlace(sessions)))
	if cfg.AdminKey != "" {
		adminSvc := app.NewAdminService(postgres.NewAdminRepository(pool), searcher, logger)
		admin := func(h http.Handler) http.Handler {
			return transporthttp.AdminOnly(cfg.AdminKey, h)
		}
		mux.Handle("/admin/default-places", admin(transporthttp.HandleAdminDefaultPlaces(adminSvc)))
		mux.Handle("/admin/default-places/", admin(transporthttp.HandleAdminDefaultPlace(adminSvc)))
		mux.Handle("/admin/reindex", admin(transporthttp.HandleAdminReindex(adminSvc)))
	} else {
		logger.Printf("WARN: ADMIN_KEY not set, admin endpoints disabled")
	}
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

// newPlaceIndex returns nil when search is not configured or unreachable;
// the service runs without address search then.
func newPlaceIndex(ctx context.Context, cfg config.Config, logger *log.Logger) *elastic.PlaceIndex {
	if cfg.ElasticURL == "" {
		return nil
	}
	client, err := elastic.NewClient(cfg.ElasticURL)
	if err != nil {
		logger.Printf("WARN: %v, address search disabled", err)
		return nil
	}
	index := elastic.NewPlaceIndex(client, cfg.ElasticIndex)
	if err := index.EnsureIndex(ctx); err != nil {
		logger.Printf("WARN: %v, address search disabled", err)
		return nil
	}
	return index
}

func dataOptions(cfg config.Config) []app.DataServiceOption {
	perKind := map[domain.ViewKind]config.Source{
		domain.ViewEvents:      cfg.Events,
		domain.ViewWeather:     cfg.Weather,
		domain.ViewRestaurants: cfg.Restaurants,
	}
	var opts []app.DataServiceOption
	for kind, src := range perKind {
		opts = append(opts,
			app.WithTTL(kind, src.TTL.Duration),
			app.WithTimeout(kind, src.Timeout.Duration),
		)
	}
	return opts
}
