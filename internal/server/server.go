// Package server wires the HTTP surface: the redirect path on tenant
// hostnames, the public edge queries, and the authenticated domain
// verification API consumed by the dashboard.
package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hoplink/hoplink/internal/clicks"
	"github.com/hoplink/hoplink/internal/config"
	"github.com/hoplink/hoplink/internal/intent"
	"github.com/hoplink/hoplink/internal/resolve"
	"github.com/hoplink/hoplink/internal/verify"
)

// ClickPublisher is the fire-and-forget sink for click events.
type ClickPublisher interface {
	Publish(clicks.Event)
}

type Server struct {
	cfg     *config.Config
	tenants *resolve.TenantResolver
	links   *resolve.LinkResolver
	intents *intent.Store
	clicks  ClickPublisher
	domains *verify.Service
}

func New(
	cfg *config.Config,
	tenants *resolve.TenantResolver,
	links *resolve.LinkResolver,
	intents *intent.Store,
	pub ClickPublisher,
	domains *verify.Service,
) *Server {
	return &Server{
		cfg:     cfg,
		tenants: tenants,
		links:   links,
		intents: intents,
		clicks:  pub,
		domains: domains,
	}
}

// Register mounts all routes. The wildcard redirect goes last so the fixed
// routes keep precedence.
func (s *Server) Register(app *fiber.App) {
	app.Get("/", s.handleHome)
	app.Get("/check-domain", s.handleCheckDomain)
	app.Get("/.well-known/assetlinks.json", s.handleAssetLinks)

	api := app.Group("/api", s.requireAuth)
	api.Post("/domains", s.handleAddDomain)
	api.Get("/domains", s.handleListDomains)
	api.Get("/domains/:id", s.handleGetDomain)
	api.Post("/domains/:id/verify", s.handleVerifyDomain)
	api.Delete("/domains/:id", s.handleDeleteDomain)

	app.Get("/*", s.handleRedirect)
}
