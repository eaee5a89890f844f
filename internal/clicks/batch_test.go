package clicks

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/hoplink/hoplink/internal"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&internal.ClickEvent{}, &internal.LinkStats{}))
	return db
}

func TestPersistBatch(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	events := []Event{
		{LinkID: 1, Platform: "android", Browser: "chrome", UserAgent: "ua-1", IP: "203.0.113.7", Timestamp: now},
		{LinkID: 1, Platform: "ios", Browser: "safari", UserAgent: "ua-2", IP: "203.0.113.8", Timestamp: now},
		{LinkID: 2, Platform: "web", Browser: "firefox", UserAgent: "ua-3", IP: "203.0.113.9", Timestamp: now},
	}
	require.NoError(t, PersistBatch(db, events))

	var rows []internal.ClickEvent
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, "android", rows[0].Platform)
	assert.Equal(t, "unknown", rows[0].Country)
	assert.Equal(t, "unknown", rows[0].City)

	var stats internal.LinkStats
	require.NoError(t, db.Where("link_id = ?", 1).First(&stats).Error)
	assert.Equal(t, int64(2), stats.ClickCount)
}

func TestPersistBatchIncrementsExistingStats(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()

	require.NoError(t, PersistBatch(db, []Event{{LinkID: 7, Platform: "web", Timestamp: now}}))
	require.NoError(t, PersistBatch(db, []Event{
		{LinkID: 7, Platform: "web", Timestamp: now},
		{LinkID: 7, Platform: "android", Timestamp: now},
	}))

	var stats internal.LinkStats
	require.NoError(t, db.Where("link_id = ?", 7).First(&stats).Error)
	assert.Equal(t, int64(3), stats.ClickCount)
}

func TestPersistBatchEmpty(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, PersistBatch(db, nil))
}
