package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"blogroll/cache"
	"blogroll/models"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const cacheStatusHeader = "X-Cache"

type entriesHandler struct {
	config *ServerConfig
}

func (h *entriesHandler) handle(c *fiber.Ctx) error {
	ctx := c.UserContext()
	key := cacheKey(c)

	if body, ok := cache.Lookup(ctx, h.config.Cache, key); ok {
		c.Set(cacheStatusHeader, "HIT")
		return h.send(c, body)
	}

	if h.config.SourceListURL == "" {
		return fatal(c, &models.ConfigurationError{Field: "source_list_url", Reason: "is required"})
	}

	sources, err := h.config.Sources.Load(ctx, h.config.SourceListURL)
	if err != nil {
		return fatal(c, err)
	}

	entries := h.config.Aggregator.Aggregate(ctx, sources)

	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding entries: %w", err)
	}

	c.Set(cacheStatusHeader, "MISS")
	if err := h.send(c, body); err != nil {
		return err
	}

	// The response is complete at this point, the client never waits on the cache
	cache.WriteBehind(h.config.Cache, key, body)
	return nil
}

func (h *entriesHandler) send(c *fiber.Ctx, body []byte) error {
	if ttl := int(h.config.CacheTTL.Seconds()); ttl > 0 {
		c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", ttl))
	} else {
		c.Set(fiber.HeaderCacheControl, "no-cache")
	}
	c.Type("json", "utf-8")
	return c.Status(fiber.StatusOK).Send(body)
}

// cacheKey identifies a request by method and full URL, query included
func cacheKey(c *fiber.Ctx) string {
	return c.Method() + " " + c.Request().URI().String()
}

// fatal answers request-level errors with a structured body
func fatal(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	kind := "InternalError"

	var configErr *models.ConfigurationError
	var listErr *models.SourceListError
	switch {
	case errors.As(err, &configErr):
		kind = "ConfigurationError"
	case errors.As(err, &listErr):
		status = fiber.StatusBadGateway
		kind = "SourceListError"
	}

	log.WithFields(log.Fields{
		"kind":  kind,
		"error": err,
	}).Error("Request failed")

	return c.Status(status).JSON(models.ErrorResponse{
		Error:   kind,
		Message: err.Error(),
	})
}
