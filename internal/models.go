package internal

import (
	"time"
)

// Behavior controls what a link does on a given mobile platform.
type Behavior string

const (
	BehaviorOpenApp Behavior = "open-app"
	BehaviorOpenURL Behavior = "open-url"
)

// VerificationStatus is the lifecycle state of a domain ownership check.
// verified is sticky: no check ever moves a record back out of it.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusFailed   VerificationStatus = "failed"
)

const MethodCNAME = "cname"

// Account owns tenants, verifications and legacy domains. Rows are created
// by the dashboard; this service only references them.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}

// Tenant maps an inbound hostname to its fallback URL and per-platform app
// identifiers. Read-only from the redirect path.
type Tenant struct {
	ID                 uint   `gorm:"primaryKey"`
	Hostname           string `gorm:"type:varchar(255);uniqueIndex;not null"`
	FallbackURL        string `gorm:"type:text;not null"`
	AndroidPackage     string `gorm:"type:varchar(255)"`
	AndroidFingerprint string `gorm:"type:varchar(255)"`
	IOSTeamID          string `gorm:"type:varchar(64)"`
	IOSBundleID        string `gorm:"type:varchar(255)"`
	IOSStoreID         string `gorm:"type:varchar(64)"`
	AccountID          uint   `gorm:"index"`
	CreatedAt          time.Time
}

// Link is a per-path redirect rule scoped to a tenant. Path is unique within
// the tenant; historical rows may carry either "/p" or "p".
type Link struct {
	ID              uint     `gorm:"primaryKey"`
	TenantID        uint     `gorm:"uniqueIndex:idx_links_tenant_path;not null"`
	Path            string   `gorm:"type:varchar(512);uniqueIndex:idx_links_tenant_path;not null"`
	DestinationURL  string   `gorm:"type:text;not null"`
	AndroidBehavior Behavior `gorm:"type:varchar(16);default:'open-url'"`
	IOSBehavior     Behavior `gorm:"type:varchar(16);default:'open-url'"`
	Campaign        string   `gorm:"type:varchar(255)"`
	Channel         string   `gorm:"type:varchar(255)"`
	PreviewTitle    string   `gorm:"type:varchar(512)"`
	PreviewImageURL string   `gorm:"type:text"`
	CreatedAt       time.Time
}

// ClickEvent is one recorded redirect. Append-only; geo fields stay
// "unknown" until a geolocation provider is wired in.
type ClickEvent struct {
	ID        uint   `gorm:"primaryKey"`
	LinkID    uint   `gorm:"index;not null"`
	Platform  string `gorm:"type:varchar(16)"`
	Browser   string `gorm:"type:varchar(32)"`
	UserAgent string `gorm:"type:text"`
	IP        string `gorm:"type:varchar(64)"`
	Country   string `gorm:"type:varchar(64)"`
	Region    string `gorm:"type:varchar(64)"`
	City      string `gorm:"type:varchar(64)"`
	CreatedAt time.Time
}

// LinkStats is a per-link click counter maintained by the clicks worker.
type LinkStats struct {
	LinkID     uint `gorm:"primaryKey"`
	ClickCount int64
}

// DomainVerification tracks CNAME ownership proof for a custom domain.
// (Domain, Subdomain, AccountID) is unique per owner.
type DomainVerification struct {
	ID             string             `gorm:"type:varchar(36);primaryKey"`
	Domain         string             `gorm:"type:varchar(255);uniqueIndex:idx_dv_domain_sub_account;not null"`
	Subdomain      string             `gorm:"type:varchar(63);uniqueIndex:idx_dv_domain_sub_account;not null"`
	CNAMETarget    string             `gorm:"type:varchar(255);not null"`
	Method         string             `gorm:"type:varchar(16);default:'cname'"`
	Status         VerificationStatus `gorm:"type:varchar(16);default:'pending';index"`
	VerifiedAt     *time.Time
	LastVerifiedAt *time.Time
	AccountID      uint               `gorm:"uniqueIndex:idx_dv_domain_sub_account;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FQDN is the host a verification check resolves: subdomain.domain, or the
// bare domain when the subdomain label is empty.
func (d *DomainVerification) FQDN() string {
	if d.Subdomain == "" || d.Subdomain == "@" {
		return d.Domain
	}
	return d.Subdomain + "." + d.Domain
}

// Domain is the legacy pre-verification domain record. Still honored by the
// hostname usability check, never written by this service.
type Domain struct {
	ID        uint   `gorm:"primaryKey"`
	Domain    string `gorm:"type:varchar(255);uniqueIndex;not null"`
	AccountID uint   `gorm:"index"`
	Validated bool
	CreatedAt time.Time
}
