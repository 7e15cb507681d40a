package notification

import (
	"context"
	"testing"
	"time"

	"companyos_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestRepository(t *testing.T) Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Notification{}, &NotificationPreference{}))
	return NewGORMRepository(db)
}

func createTestNotification(t *testing.T, repo Repository, userID uuid.UUID, mutate ...func(*Notification)) *Notification {
	n := &Notification{
		UserID:  userID,
		Type:    TypeTaskAssigned,
		Title:   "Test notification",
		Message: "Something happened.",
	}
	for _, fn := range mutate {
		fn(n)
	}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestGORMRepository_ListExcludesSoftDeleted(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	kept := createTestNotification(t, repo, userID)
	deleted := createTestNotification(t, repo, userID)
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID, userID))

	items, total, err := repo.List(ctx, userID, ListFilters{}, 50, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, kept.ID, items[0].ID)
}

func TestGORMRepository_ListIsScopedToUser(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	createTestNotification(t, repo, alice)
	createTestNotification(t, repo, bob)

	items, total, err := repo.List(ctx, alice, ListFilters{}, 50, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, alice, items[0].UserID)
}

func TestGORMRepository_ListNewestFirstWithPaging(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		n := createTestNotification(t, repo, userID, func(n *Notification) {
			n.CreatedAt = createdAt
		})
		ids = append(ids, n.ID)
	}

	firstPage, total, err := repo.List(ctx, userID, ListFilters{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, firstPage, 2)
	assert.Equal(t, ids[4], firstPage[0].ID)
	assert.Equal(t, ids[3], firstPage[1].ID)

	secondPage, _, err := repo.List(ctx, userID, ListFilters{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 2)
	assert.Equal(t, ids[2], secondPage[0].ID)
}

func TestGORMRepository_ListFilters(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	unread := createTestNotification(t, repo, userID)
	mention := createTestNotification(t, repo, userID, func(n *Notification) {
		n.Type = TypeMention
		et := EntityConversation
		n.EntityType = &et
	})
	require.NoError(t, repo.MarkAsRead(ctx, mention.ID, userID))

	readFalse := false
	items, total, err := repo.List(ctx, userID, ListFilters{Read: &readFalse}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, unread.ID, items[0].ID)

	mentionType := TypeMention
	items, total, err = repo.List(ctx, userID, ListFilters{Type: &mentionType}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, mention.ID, items[0].ID)

	conversation := EntityConversation
	items, _, err = repo.List(ctx, userID, ListFilters{EntityType: &conversation}, 50, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mention.ID, items[0].ID)
}

func TestGORMRepository_UnreadCountMatchesUnreadListing(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	createTestNotification(t, repo, userID)
	createTestNotification(t, repo, userID)
	read := createTestNotification(t, repo, userID)
	require.NoError(t, repo.MarkAsRead(ctx, read.ID, userID))
	deleted := createTestNotification(t, repo, userID)
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID, userID))

	count, err := repo.UnreadCount(ctx, userID)
	require.NoError(t, err)

	readFalse := false
	items, _, err := repo.List(ctx, userID, ListFilters{Read: &readFalse}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(len(items)), count)
	assert.Equal(t, int64(2), count)
}

func TestGORMRepository_MarkAsReadIsIdempotent(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	n := createTestNotification(t, repo, userID)

	assert.NoError(t, repo.MarkAsRead(ctx, n.ID, userID))
	assert.NoError(t, repo.MarkAsRead(ctx, n.ID, userID))

	count, err := repo.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestGORMRepository_MarkAsReadEnforcesOwnership(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	n := createTestNotification(t, repo, owner)

	err := repo.MarkAsRead(ctx, n.ID, stranger)
	assert.True(t, errorIsNotFound(err))

	// The row is untouched for the owner.
	count, countErr := repo.UnreadCount(ctx, owner)
	require.NoError(t, countErr)
	assert.Equal(t, int64(1), count)
}

func TestGORMRepository_MarkAsReadOnDeletedRowReturnsNotFound(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	n := createTestNotification(t, repo, userID)
	require.NoError(t, repo.SoftDelete(ctx, n.ID, userID))

	err := repo.MarkAsRead(ctx, n.ID, userID)
	assert.True(t, errorIsNotFound(err))
}

func TestGORMRepository_MarkAllAsReadSecondRunTouchesNothing(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	createTestNotification(t, repo, userID)
	createTestNotification(t, repo, userID)

	updated, err := repo.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = repo.MarkAllAsRead(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestGORMRepository_SoftDeleteTwiceReturnsNotFound(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	n := createTestNotification(t, repo, userID)

	require.NoError(t, repo.SoftDelete(ctx, n.ID, userID))
	err := repo.SoftDelete(ctx, n.ID, userID)
	assert.True(t, errorIsNotFound(err))
}

func TestGORMRepository_PurgeDeletedBefore(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	oldDeleted := createTestNotification(t, repo, userID)
	require.NoError(t, repo.SoftDelete(ctx, oldDeleted.ID, userID))
	active := createTestNotification(t, repo, userID)

	purged, err := repo.PurgeDeletedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// Active rows survive a purge.
	items, _, err := repo.List(ctx, userID, ListFilters{}, 50, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, active.ID, items[0].ID)

	// Nothing left to purge.
	purged, err = repo.PurgeDeletedBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)
}

func TestGORMRepository_PreferenceRoundTrip(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.FindPreference(ctx, userID, TypeMention)
	assert.True(t, errorIsNotFound(err))

	pref := DefaultPreference(userID, TypeMention)
	pref.Enabled = false
	require.NoError(t, repo.CreatePreference(ctx, &pref))

	found, err := repo.FindPreference(ctx, userID, TypeMention)
	require.NoError(t, err)
	assert.False(t, found.Enabled)
	assert.True(t, found.EmailEnabled)

	found.EmailEnabled = false
	require.NoError(t, repo.SavePreference(ctx, found))

	all, err := repo.ListPreferences(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].EmailEnabled)
}

func TestGORMRepository_DuplicatePreferenceConflicts(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	first := DefaultPreference(userID, TypeMention)
	require.NoError(t, repo.CreatePreference(ctx, &first))

	duplicate := DefaultPreference(userID, TypeMention)
	err := repo.CreatePreference(ctx, &duplicate)
	require.Error(t, err)
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, common.ErrConflict.Code, apiErr.Code)
}

func TestGORMRepository_MetadataRoundTrip(t *testing.T) {
	repo := setupTestRepository(t)
	ctx := context.Background()
	userID := uuid.New()

	created := createTestNotification(t, repo, userID, func(n *Notification) {
		n.Metadata = Metadata{"ticket_number": "OPS-182", "priority": "high"}
	})

	items, _, err := repo.List(ctx, userID, ListFilters{}, 50, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "OPS-182", items[0].Metadata["ticket_number"])
}

func errorIsNotFound(err error) bool {
	if err == nil {
		return false
	}
	apiErr, ok := common.IsAPIError(err)
	return ok && apiErr.Code == common.ErrNotFound.Code
}
