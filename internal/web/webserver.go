// Package web serves the Pokédex list over HTTP as JSON.
package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/catalog"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pagestate"
)

// Config holds web server settings.
type Config struct {
	// PageState configures the per-request controllers.
	PageState pagestate.Config

	// DetailBaseURL is the API root detail URLs are built from,
	// e.g. "https://pokeapi.co/api/v2".
	DetailBaseURL string

	Version string
}

// Server bundles the collaborators shared by all requests.
type Server struct {
	fetcher catalog.PageFetcher
	details catalog.DetailFetcher
	store   cache.Store
	config  Config
}

// New builds the Fiber application and sets up the routes.
//
// Each list request gets its own page controller so concurrent visitors never
// share paging or search state; the page store is shared.
func New(fetcher catalog.PageFetcher, details catalog.DetailFetcher, store cache.Store, cfg Config) *fiber.App {
	s := &Server{
		fetcher: fetcher,
		details: details,
		store:   store,
		config:  cfg,
	}
	s.config.DetailBaseURL = strings.TrimRight(cfg.DetailBaseURL, "/")

	app := fiber.New(fiber.Config{
		AppName:               "pokedex " + cfg.Version,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(RequestLogger(logging.NewLogger("web")))

	app.Get("/health", s.healthRoute)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/api/pokemon", s.listRoute)
	app.Get("/api/pokemon/:name", s.detailRoute)

	return app
}

// errorResponse is the JSON body of every error.
type errorResponse struct {
	Error string `json:"error"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}
