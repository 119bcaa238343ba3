package repository

import (
	"context"
	"testing"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const browser = "0b7d1c9e-5f3a-4c2b-8e6d-1a2b3c4d5e6f"

func TestSavedWishlistRepository_ListOnlyPublishedNewestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewSavedWishlistRepository(db)
	ctx := context.Background()

	older := testutil.CreateWishlist(t, db, "Older")
	testutil.Publish(t, db, older, "11111111-1111-4111-8111-111111111111")
	newer := testutil.CreateWishlist(t, db, "Newer")
	testutil.Publish(t, db, newer, "22222222-2222-4222-8222-222222222222")
	draft := testutil.CreateWishlist(t, db, "Draft")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, w := range []*models.Wishlist{older, newer, draft} {
		_, err := repo.Create(ctx, &models.SavedWishlist{BrowserID: browser, WishlistID: w.ID, SavedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &models.SavedWishlist{BrowserID: "someone-else", WishlistID: older.ID})
	require.NoError(t, err)

	views, err := repo.ListByBrowser(ctx, browser)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Newer", views[0].Title)
	assert.Equal(t, "Older", views[1].Title)
	require.NotNil(t, views[0].SecretToken)
	assert.Equal(t, "22222222-2222-4222-8222-222222222222", *views[0].SecretToken)
	assert.Equal(t, "Owner", views[0].OwnerName)
}

func TestSavedWishlistRepository_DuplicateAndDelete(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewSavedWishlistRepository(db)
	ctx := context.Background()
	w := testutil.CreateWishlist(t, db, "Birthday")

	_, err := repo.Create(ctx, &models.SavedWishlist{BrowserID: browser, WishlistID: w.ID})
	require.NoError(t, err)

	exists, err := repo.Exists(ctx, browser, w.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Create(ctx, &models.SavedWishlist{BrowserID: browser, WishlistID: w.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	removed, err := repo.Delete(ctx, browser, w.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, browser, w.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
