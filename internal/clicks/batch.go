package clicks

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hoplink/hoplink/internal"
)

// Geolocation provider is not wired in; every row carries this placeholder.
const geoUnknown = "unknown"

// PersistBatch writes a batch of click events in one transaction: an
// append-only row per event plus an atomic per-link counter upsert.
func PersistBatch(db *gorm.DB, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	rows := make([]internal.ClickEvent, 0, len(events))
	counts := make(map[uint]int64)
	for _, e := range events {
		rows = append(rows, internal.ClickEvent{
			LinkID:    e.LinkID,
			Platform:  e.Platform,
			Browser:   e.Browser,
			UserAgent: e.UserAgent,
			IP:        e.IP,
			Country:   geoUnknown,
			Region:    geoUnknown,
			City:      geoUnknown,
			CreatedAt: e.Timestamp,
		})
		counts[e.LinkID]++
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		for linkID, count := range counts {
			rec := internal.LinkStats{LinkID: linkID, ClickCount: count}
			if err := tx.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "link_id"}},
					DoUpdates: clause.Assignments(map[string]interface{}{
						"click_count": gorm.Expr("link_stats.click_count + excluded.click_count"),
					}),
				},
			).Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
