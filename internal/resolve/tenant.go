// Package resolve looks up tenants by hostname and links by path. Both
// lookups are read-only; all writes happen on the dashboard side.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hoplink/hoplink/internal"
)

var (
	ErrTenantNotFound = errors.New("domain not configured")
	ErrLinkNotFound   = errors.New("link not found")
)

const tenantCacheTTL = 5 * time.Minute

type TenantResolver struct {
	db         *gorm.DB
	rdb        *redis.Client
	mainDomain string
}

func NewTenantResolver(db *gorm.DB, rdb *redis.Client, mainDomain string) *TenantResolver {
	return &TenantResolver{db: db, rdb: rdb, mainDomain: strings.ToLower(mainDomain)}
}

// Resolve finds the tenant owning hostname. Exact equality only; callers
// normalize with NormalizeHost first. Lookups go through a short-lived
// Redis cache; cache errors fall through to the database.
func (r *TenantResolver) Resolve(ctx context.Context, hostname string) (*internal.Tenant, error) {
	hostname = strings.ToLower(hostname)
	cacheKey := "tenant:" + hostname

	if r.rdb != nil {
		raw, err := r.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var t internal.Tenant
			if jerr := json.Unmarshal([]byte(raw), &t); jerr == nil {
				return &t, nil
			}
		} else if err != redis.Nil {
			slog.Warn("tenant cache read failed", "hostname", hostname, "err", err)
		}
	}

	var tenant internal.Tenant
	err := r.db.WithContext(ctx).Where("hostname = ?", hostname).First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantNotFound
	} else if err != nil {
		return nil, err
	}

	if r.rdb != nil {
		if raw, jerr := json.Marshal(&tenant); jerr == nil {
			if err := r.rdb.Set(ctx, cacheKey, raw, tenantCacheTTL).Err(); err != nil {
				slog.Warn("tenant cache write failed", "hostname", hostname, "err", err)
			}
		}
	}

	return &tenant, nil
}

// HostnameConfigured reports whether a hostname may receive traffic: it is
// the main domain (or under it), belongs to a tenant, is covered by a
// verified domain verification, or by a validated legacy domain record.
// Used by edge layers to gate traffic before it reaches the application.
func (r *TenantResolver) HostnameConfigured(ctx context.Context, hostname string) (bool, error) {
	hostname = strings.ToLower(strings.TrimSuffix(hostname, "."))
	if hostname == "" {
		return false, nil
	}
	if hostname == r.mainDomain || strings.HasSuffix(hostname, "."+r.mainDomain) {
		return true, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&internal.Tenant{}).
		Where("hostname = ?", hostname).Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	// A verified record may cover the hostname as subdomain.domain, or as
	// the bare domain when no subdomain label was registered.
	sub, dom, hasSub := splitFirstLabel(hostname)
	q := r.db.WithContext(ctx).Model(&internal.DomainVerification{}).
		Where("status = ?", internal.StatusVerified)
	if hasSub {
		q = q.Where("(domain = ? AND subdomain = ?) OR (domain = ? AND (subdomain = '' OR subdomain = '@'))", dom, sub, hostname)
	} else {
		q = q.Where("domain = ? AND (subdomain = '' OR subdomain = '@')", hostname)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = r.db.WithContext(ctx).Model(&internal.Domain{}).
		Where("domain = ? AND validated = ?", hostname, true).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NormalizeHost lower-cases a request host and strips the port, a leading
// "www." and a trailing dot.
func NormalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if i := strings.IndexByte(h, ':'); i >= 0 {
		h = h[:i]
	}
	h = strings.TrimSuffix(h, ".")
	h = strings.TrimPrefix(h, "www.")
	return h
}

func splitFirstLabel(hostname string) (sub, domain string, ok bool) {
	i := strings.IndexByte(hostname, '.')
	if i <= 0 || i == len(hostname)-1 {
		return "", hostname, false
	}
	rest := hostname[i+1:]
	// The remainder must itself still contain a dot to be a registrable
	// domain (e.g. go.acme.io -> go + acme.io, but acme.io stays whole).
	if !strings.Contains(rest, ".") {
		return "", hostname, false
	}
	return hostname[:i], rest, true
}
