package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hoplink/hoplink/internal"
	"github.com/hoplink/hoplink/internal/clicks"
	"github.com/hoplink/hoplink/internal/intent"
	"github.com/hoplink/hoplink/internal/platform"
	"github.com/hoplink/hoplink/internal/redirect"
	"github.com/hoplink/hoplink/internal/resolve"
)

const sideEffectTimeout = 5 * time.Second

// handleRedirect is the hot path: hostname -> tenant -> link -> decision,
// then a 301. The intent capture and click publish race the response and
// are never awaited.
func (s *Server) handleRedirect(c *fiber.Ctx) error {
	host := resolve.NormalizeHost(c.Hostname())
	ctx := c.Context()

	tenant, err := s.tenants.Resolve(ctx, host)
	if errors.Is(err, resolve.ErrTenantNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("domain not configured")
	} else if err != nil {
		slog.Error("tenant lookup failed", "host", host, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	link, err := s.links.Resolve(ctx, tenant.ID, c.Params("*"))
	if errors.Is(err, resolve.ErrLinkNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("deep link not found")
	} else if err != nil {
		slog.Error("link lookup failed", "host", host, "path", c.Params("*"), "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	userAgent := c.Get("User-Agent")
	if userAgent == "" {
		userAgent = "Unknown"
	}
	cls := platform.Classify(userAgent)
	dest := redirect.Decide(tenant, link, cls)

	// Copy request values out before dispatching: the fiber context is
	// recycled once the handler returns.
	ip := c.IP()
	if cls.IsMobile {
		go s.captureIntent(link, cls, ip, userAgent)
	}
	go s.clicks.Publish(clicks.Event{
		LinkID:    link.ID,
		Platform:  string(cls.Platform),
		Browser:   platform.Browser(userAgent),
		UserAgent: userAgent,
		IP:        ip,
		Timestamp: time.Now().UTC(),
	})

	return c.Redirect(dest, redirect.Status)
}

func (s *Server) captureIntent(link *internal.Link, cls platform.Classification, ip, userAgent string) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	err := s.intents.Capture(ctx, intent.Record{
		Fingerprint:    intent.Fingerprint(ip, platform.OS(userAgent), string(cls.Platform)),
		IP:             ip,
		UserAgent:      userAgent,
		LinkID:         link.ID,
		DestinationURL: link.DestinationURL,
		Campaign:       link.Campaign,
		Channel:        link.Channel,
	})
	if err != nil {
		slog.Error("intent capture failed", "link_id", link.ID, "err", err)
	}
}
