package server

import (
	"context"
	"time"

	"blogroll/cache"
	"blogroll/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// SourceLoader reads the list of sources for one aggregation pass
type SourceLoader interface {
	Load(ctx context.Context, location string) ([]models.Source, error)
}

// EntryAggregator produces the merged entry list of all sources
type EntryAggregator interface {
	Aggregate(ctx context.Context, sources []models.Source) []models.Entry
}

type ServerConfig struct {

	// Where the source list is read from on every cache miss
	SourceListURL string

	// How long a response may be cached, by us and by clients
	CacheTTL time.Duration

	Sources    SourceLoader
	Aggregator EntryAggregator

	// Response cache, cache.Noop{} when nil
	Cache cache.Gateway
}

// Returns a fiber.App instance to be used as an HTTP server for the aggregated feed
func Server(config *ServerConfig) *fiber.App {
	if config.Cache == nil {
		config.Cache = cache.Noop{}
	}

	app := fiber.New(fiber.Config{
		AppName:               "blogroll",
		DisableStartupMessage: true,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	// Entries are public, any origin may read them
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Content-Type, Cache-Control",
		MaxAge:       86400,
	}))

	handler := &entriesHandler{config: config}
	app.Get("/", handler.handle)
	app.Get("/entries", handler.handle)

	// Preflight requests without CORS headers still get a no-op answer
	preflight := func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	}
	app.Options("/", preflight)
	app.Options("/entries", preflight)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}
