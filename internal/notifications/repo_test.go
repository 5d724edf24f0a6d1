package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/motorsure/brokerage-backend/pkg/db/models"
	"github.com/motorsure/brokerage-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  recipient_type TEXT NOT NULL,
  message TEXT NOT NULL,
  severity TEXT NOT NULL DEFAULT 'info',
  sender_name TEXT NOT NULL DEFAULT 'System',
  sender_role TEXT NOT NULL DEFAULT 'System',
  related_purchase_id TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, recipient uuid.UUID, created time.Time, read bool) *models.Notification {
	t.Helper()

	n := &models.Notification{
		ID:            uuid.New(),
		RecipientID:   recipient,
		RecipientType: enums.RecipientTypeCustomer,
		Message:       "policy update",
		Severity:      enums.NotificationSeverityInfo,
		SenderName:    "System",
		SenderRole:    "System",
		CreatedAt:     created,
	}
	if read {
		readAt := created.Add(time.Minute)
		n.ReadAt = &readAt
	}
	require.NoError(t, db.Create(n).Error)
	return n
}

func TestNotificationsRepoListPagination(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	var seeded []*models.Notification
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedNotification(t, db, recipient, base.Add(time.Duration(i)*time.Hour), false))
	}
	// Another recipient's rows must never leak into the page.
	seedNotification(t, db, uuid.New(), base, false)

	page, cursor, err := repo.List(context.Background(), listNotificationsParams{
		RecipientID:   recipient,
		RecipientType: enums.RecipientTypeCustomer,
		Limit:         3,
	})
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.NotNil(t, cursor)
	assert.Equal(t, seeded[4].ID, page[0].ID)
	assert.Equal(t, seeded[2].ID, page[2].ID)

	rest, cursor, err := repo.List(context.Background(), listNotificationsParams{
		RecipientID:   recipient,
		RecipientType: enums.RecipientTypeCustomer,
		Limit:         3,
		Cursor:        cursor,
	})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Nil(t, cursor)
	assert.Equal(t, seeded[1].ID, rest[0].ID)
	assert.Equal(t, seeded[0].ID, rest[1].ID)
}

func TestNotificationsRepoUnreadFilterAndCount(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	base := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)

	unread := seedNotification(t, db, recipient, base.Add(time.Hour), false)
	seedNotification(t, db, recipient, base, true)

	page, _, err := repo.List(context.Background(), listNotificationsParams{
		RecipientID:   recipient,
		RecipientType: enums.RecipientTypeCustomer,
		Limit:         10,
		UnreadOnly:    true,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, unread.ID, page[0].ID)

	count, err := repo.CountUnread(context.Background(), recipient, enums.RecipientTypeCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationsRepoMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	now := time.Date(2025, 5, 3, 8, 0, 0, 0, time.UTC)

	n := seedNotification(t, db, recipient, now.Add(-time.Hour), false)

	mark, err := repo.MarkRead(context.Background(), recipient, n.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	// A second mark finds the row but changes nothing.
	mark, err = repo.MarkRead(context.Background(), recipient, n.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)

	// Someone else's notification is not found at all.
	mark, err = repo.MarkRead(context.Background(), uuid.New(), n.ID, now)
	require.NoError(t, err)
	assert.False(t, mark.Found)
	assert.False(t, mark.Updated)
}

func TestNotificationsRepoMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	now := time.Date(2025, 5, 4, 8, 0, 0, 0, time.UTC)

	seedNotification(t, db, recipient, now.Add(-2*time.Hour), false)
	seedNotification(t, db, recipient, now.Add(-time.Hour), false)
	seedNotification(t, db, recipient, now.Add(-3*time.Hour), true)

	updated, err := repo.MarkAllRead(context.Background(), recipient, enums.RecipientTypeCustomer, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := repo.CountUnread(context.Background(), recipient, enums.RecipientTypeCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestNotificationsRepoDeleteOlderThan(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	cutoff := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)

	seedNotification(t, db, recipient, cutoff.Add(-48*time.Hour), true)
	keep := seedNotification(t, db, recipient, cutoff.Add(time.Hour), false)

	deleted, err := repo.DeleteOlderThan(context.Background(), nil, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	page, _, err := repo.List(context.Background(), listNotificationsParams{
		RecipientID:   recipient,
		RecipientType: enums.RecipientTypeCustomer,
		Limit:         10,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, keep.ID, page[0].ID)
}
