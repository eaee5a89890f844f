package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hoplink/hoplink/internal/platform"
	"github.com/hoplink/hoplink/internal/redirect"
	"github.com/hoplink/hoplink/internal/resolve"
)

const playStoreBase = "https://play.google.com/store/apps/details?id="

// handleHome redirects the bare hostname to the platform-appropriate
// destination: store listing for mobile visitors of app-enabled tenants,
// the fallback URL for everything else.
func (s *Server) handleHome(c *fiber.Ctx) error {
	host := resolve.NormalizeHost(c.Hostname())

	tenant, err := s.tenants.Resolve(c.Context(), host)
	if errors.Is(err, resolve.ErrTenantNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("domain not configured")
	} else if err != nil {
		slog.Error("tenant lookup failed", "host", host, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	cls := platform.Classify(c.Get("User-Agent"))
	dest := tenant.FallbackURL
	switch {
	case cls.IsMobile && cls.Platform == platform.PlatformIOS && tenant.IOSStoreID != "":
		dest = "https://apps.apple.com/app/id" + tenant.IOSStoreID
	case cls.IsMobile && cls.Platform == platform.PlatformAndroid && tenant.AndroidPackage != "":
		dest = playStoreBase + tenant.AndroidPackage
	}

	return c.Redirect(dest, redirect.Status)
}

// handleCheckDomain is the edge gate: CDN layers ask it whether a hostname
// should receive traffic at all.
func (s *Server) handleCheckDomain(c *fiber.Ctx) error {
	domain := c.Query("domain")
	if domain == "" {
		return c.Status(fiber.StatusBadRequest).SendString("missing domain parameter")
	}

	configured, err := s.tenants.HostnameConfigured(c.Context(), resolve.NormalizeHost(domain))
	if err != nil {
		slog.Error("check-domain failed", "domain", domain, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	if !configured {
		return c.Status(fiber.StatusForbidden).SendString("forbidden")
	}
	return c.SendString("ok")
}

type assetLinkTarget struct {
	Namespace    string   `json:"namespace"`
	PackageName  string   `json:"package_name"`
	Fingerprints []string `json:"sha256_cert_fingerprints"`
}

type assetLink struct {
	Relation []string        `json:"relation"`
	Target   assetLinkTarget `json:"target"`
}

// handleAssetLinks serves the Android App Links statement for the tenant
// owning the request hostname.
func (s *Server) handleAssetLinks(c *fiber.Ctx) error {
	host := resolve.NormalizeHost(c.Hostname())

	tenant, err := s.tenants.Resolve(c.Context(), host)
	if errors.Is(err, resolve.ErrTenantNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("domain not configured")
	} else if err != nil {
		slog.Error("tenant lookup failed", "host", host, "err", err)
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}
	if tenant.AndroidPackage == "" || tenant.AndroidFingerprint == "" {
		return c.Status(fiber.StatusNotFound).SendString("android app not configured")
	}

	return c.JSON([]assetLink{{
		Relation: []string{"delegate_permission/common.handle_all_urls"},
		Target: assetLinkTarget{
			Namespace:    "android_app",
			PackageName:  tenant.AndroidPackage,
			Fingerprints: []string{tenant.AndroidFingerprint},
		},
	}})
}
