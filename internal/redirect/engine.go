// Package redirect turns (tenant, link, platform) into a single destination.
// Stateless: each decision is a pure function of its inputs, side effects
// are dispatched by the caller.
package redirect

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/hoplink/hoplink/internal"
	"github.com/hoplink/hoplink/internal/platform"
)

// Status is the redirect status for every decision.
const Status = fiber.StatusMovedPermanently

const appStoreBase = "https://apps.apple.com/app/id"

// Decide picks the destination for one request. Desktop traffic always gets
// the safe default (tenant fallback, else link destination). Mobile traffic
// may be handed to the platform store or an app intent, but any failure to
// build those falls back to the link destination, never an error.
func Decide(tenant *internal.Tenant, link *internal.Link, cls platform.Classification) string {
	dest := tenant.FallbackURL
	if dest == "" {
		dest = link.DestinationURL
	}

	if !cls.IsMobile {
		return dest
	}

	switch cls.Platform {
	case platform.PlatformIOS:
		if link.IOSBehavior == internal.BehaviorOpenApp && tenant.IOSStoreID != "" {
			return appStoreBase + tenant.IOSStoreID
		}
		// Expected to be a Universal-Link-capable URL; iOS needs no
		// custom intent scheme.
		return link.DestinationURL
	case platform.PlatformAndroid:
		if link.AndroidBehavior == internal.BehaviorOpenApp && tenant.AndroidPackage != "" {
			return AndroidIntentURI(link.DestinationURL, tenant.AndroidPackage)
		}
		return link.DestinationURL
	default:
		return dest
	}
}

// AndroidIntentURI rewrites an https destination into an intent:// URI that
// Android resolves against the given package. An unparseable destination is
// returned verbatim so the redirect can never fail here.
func AndroidIntentURI(destination, pkg string) string {
	u, err := url.Parse(destination)
	if err != nil || u.Host == "" {
		return destination
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}

	uri := "intent://" + u.Host + u.Path
	if u.RawQuery != "" {
		uri += "?" + u.RawQuery
	}
	return uri + "#Intent;scheme=" + scheme + ";package=" + pkg + ";end"
}
