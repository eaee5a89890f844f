// Package verify owns the custom-domain ownership lifecycle: records enter
// pending, settle into verified or failed through CNAME checks, and failed
// records stay retryable until a check succeeds. verified never reverts.
package verify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hoplink/hoplink/internal"
)

var (
	ErrNotFound        = errors.New("domain verification not found")
	ErrInvalidDomain   = errors.New("invalid domain")
	ErrInvalidSub      = errors.New("invalid subdomain")
	ErrDuplicateDomain = errors.New("domain already registered")
)

type Service struct {
	db       *gorm.DB
	resolver Resolver
	target   string
}

func NewService(db *gorm.DB, resolver Resolver, cnameTarget string) *Service {
	return &Service{db: db, resolver: resolver, target: cnameTarget}
}

// Add registers a new domain for verification. The record starts pending
// and carries the CNAME target the owner must point their record at.
func (s *Service) Add(ctx context.Context, accountID uint, domain, subdomain string) (*internal.DomainVerification, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))

	if !validDomain(domain) {
		return nil, ErrInvalidDomain
	}
	if !validSubdomain(subdomain) {
		return nil, ErrInvalidSub
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&internal.DomainVerification{}).
		Where("domain = ? AND subdomain = ? AND account_id = ?", domain, subdomain, accountID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateDomain
	}

	rec := internal.DomainVerification{
		ID:          uuid.NewString(),
		Domain:      domain,
		Subdomain:   subdomain,
		CNAMETarget: s.target,
		Method:      internal.MethodCNAME,
		Status:      internal.StatusPending,
		AccountID:   accountID,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Verify runs the ownership check for one record, owner-scoped. A record
// that is already verified returns as-is without touching its timestamps.
func (s *Service) Verify(ctx context.Context, accountID uint, id string) (*internal.DomainVerification, error) {
	rec, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == internal.StatusVerified {
		return rec, nil
	}
	if err := s.check(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// check performs the CNAME comparison and persists the transition. A DNS
// failure or mismatch is a normal negative outcome recorded as failed, not
// an error; only persistence problems surface.
func (s *Service) check(ctx context.Context, rec *internal.DomainVerification) error {
	now := time.Now().UTC()

	cname, err := s.resolver.LookupCNAME(ctx, rec.FQDN())
	matched := err == nil && cnameEqual(cname, rec.CNAMETarget)
	if err != nil {
		slog.Info("cname lookup failed", "fqdn", rec.FQDN(), "err", err)
	}

	rec.LastVerifiedAt = &now
	if matched {
		rec.Status = internal.StatusVerified
		rec.VerifiedAt = &now
	} else {
		rec.Status = internal.StatusFailed
	}

	return s.db.WithContext(ctx).Model(rec).Updates(map[string]interface{}{
		"status":           rec.Status,
		"verified_at":      rec.VerifiedAt,
		"last_verified_at": rec.LastVerifiedAt,
	}).Error
}

func cnameEqual(got, want string) bool {
	return strings.EqualFold(strings.TrimSuffix(got, "."), strings.TrimSuffix(want, "."))
}

func (s *Service) List(ctx context.Context, accountID uint) ([]internal.DomainVerification, error) {
	var recs []internal.DomainVerification
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&recs).Error
	return recs, err
}

func (s *Service) Get(ctx context.Context, accountID uint, id string) (*internal.DomainVerification, error) {
	var rec internal.DomainVerification
	err := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes a record for good. Hard delete, owner-scoped.
func (s *Service) Delete(ctx context.Context, accountID uint, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND account_id = ?", id, accountID).
		Delete(&internal.DomainVerification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Sweep re-checks every pending and failed record across all accounts,
// pausing between checks so upstream resolvers are not hammered. One bad
// record never aborts the batch.
func (s *Service) Sweep(ctx context.Context, checkDelay time.Duration) {
	var recs []internal.DomainVerification
	err := s.db.WithContext(ctx).
		Where("status IN ?", []internal.VerificationStatus{internal.StatusPending, internal.StatusFailed}).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		slog.Error("verification sweep query failed", "err", err)
		return
	}
	if len(recs) == 0 {
		return
	}

	slog.Info("verification sweep started", "count", len(recs))
	for i := range recs {
		if err := s.check(ctx, &recs[i]); err != nil {
			slog.Error("verification check failed to persist", "id", recs[i].ID, "err", err)
		}
		if i < len(recs)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(checkDelay):
			}
		}
	}
	slog.Info("verification sweep finished", "count", len(recs))
}
