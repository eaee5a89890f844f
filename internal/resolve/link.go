package resolve

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hoplink/hoplink/internal"
)

type LinkResolver struct {
	db *gorm.DB
}

func NewLinkResolver(db *gorm.DB) *LinkResolver {
	return &LinkResolver{db: db}
}

// Resolve finds the link for a path within a tenant. Stored paths may carry
// a leading slash or not (dashboard versions disagreed), so both variants
// are tried. If both exist the older row wins, by creation order then id.
func (r *LinkResolver) Resolve(ctx context.Context, tenantID uint, path string) (*internal.Link, error) {
	bare := strings.TrimPrefix(path, "/")
	if bare == "" {
		return nil, ErrLinkNotFound
	}
	variants := []string{bare, "/" + bare}

	var link internal.Link
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND path IN ?", tenantID, variants).
		Order("created_at ASC, id ASC").
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	} else if err != nil {
		return nil, err
	}
	return &link, nil
}
