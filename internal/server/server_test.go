package server

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hoplink/hoplink/internal"
	"github.com/hoplink/hoplink/internal/clicks"
	"github.com/hoplink/hoplink/internal/config"
	"github.com/hoplink/hoplink/internal/intent"
	"github.com/hoplink/hoplink/internal/resolve"
	"github.com/hoplink/hoplink/internal/verify"
)

const (
	testJWTSecret = "test-secret"
	testTarget    = "custom.hoplink.app"

	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []clicks.Event
}

func (p *capturePublisher) Publish(e clicks.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *capturePublisher) last() clicks.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type fakeDNS struct {
	cnames map[string]string
}

func (f *fakeDNS) LookupCNAME(_ context.Context, host string) (string, error) {
	if c, ok := f.cnames[host]; ok {
		return c, nil
	}
	return "", errors.New("no such host")
}

func (f *fakeDNS) LookupTXT(context.Context, string) ([]string, error) {
	return nil, errors.New("no such host")
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	redis *miniredis.Miniredis
	pub   *capturePublisher
	dns   *fakeDNS
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&internal.Account{}, &internal.Tenant{}, &internal.Link{},
		&internal.DomainVerification{}, &internal.Domain{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		CNAMETarget: testTarget,
		MainDomain:  "hoplink.app",
		JWTSecret:   testJWTSecret,
	}

	pub := &capturePublisher{}
	dns := &fakeDNS{cnames: map[string]string{}}

	srv := New(
		cfg,
		resolve.NewTenantResolver(db, rdb, cfg.MainDomain),
		resolve.NewLinkResolver(db),
		intent.NewStore(rdb),
		pub,
		verify.NewService(db, dns, cfg.CNAMETarget),
	)

	app := fiber.New()
	srv.Register(app)

	return &testEnv{app: app, db: db, redis: mr, pub: pub, dns: dns}
}

func (e *testEnv) seedShopTenant(t *testing.T) internal.Tenant {
	t.Helper()
	tenant := internal.Tenant{
		Hostname:           "shop.example",
		FallbackURL:        "https://shop.example/web",
		AndroidPackage:     "com.shop.app",
		AndroidFingerprint: "AA:BB:CC:DD",
		IOSStoreID:         "123456789",
		AccountID:          1,
	}
	require.NoError(t, e.db.Create(&tenant).Error)
	require.NoError(t, e.db.Create(&internal.Link{
		TenantID:        tenant.ID,
		Path:            "/sale",
		DestinationURL:  "https://shop.example/app/sale",
		AndroidBehavior: internal.BehaviorOpenApp,
		IOSBehavior:     internal.BehaviorOpenApp,
		Campaign:        "summer",
	}).Error)
	return tenant
}

func (e *testEnv) intentCount() int {
	n := 0
	for _, k := range e.redis.Keys() {
		if strings.HasPrefix(k, "intent:") {
			n++
		}
	}
	return n
}

func testToken(t *testing.T, subject string) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}
