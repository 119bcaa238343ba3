package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWishlistRepository_Publish_ConditionalUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWishlistRepository(db)
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	token := "3f2b8c1e-8a4d-4f4e-9b1a-2c3d4e5f6a7b"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "wishlists" SET "is_published"=$1,"published_at"=$2,"secret_token"=$3,"updated_at"=$4 WHERE id = $5 AND is_published = $6`)).
		WithArgs(true, at, token, at, 4, false).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.Publish(context.Background(), 4, token, at)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_Lifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewWishlistRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Wishlist{Title: "Birthday", OwnerName: "Sam"})
	require.NoError(t, err)
	assert.False(t, created.IsPublished)
	assert.Nil(t, created.SecretToken)
	assert.Nil(t, created.PublishedAt)

	count, err := repo.CountGifts(ctx, created.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	testutil.CreateGift(t, db, created.ID, "Book", 0)
	count, err = repo.CountGifts(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	renamed, err := repo.Update(ctx, created.ID, models.WishlistPatch{Title: models.Some("Birthday 2026")})
	require.NoError(t, err)
	assert.Equal(t, "Birthday 2026", renamed.Title)
	assert.Equal(t, "Sam", renamed.OwnerName)

	token := "3f2b8c1e-8a4d-4f4e-9b1a-2c3d4e5f6a7b"
	_, err = repo.GetByToken(ctx, token)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ok, err := repo.Publish(ctx, created.ID, token, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Publish(ctx, created.ID, "another-token", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	published, err := repo.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	assert.Equal(t, token, published.Token())
	assert.NotNil(t, published.PublishedAt)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestWishlistRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewWishlistRepository(db)
	saved := NewSavedWishlistRepository(db)
	ctx := context.Background()

	w := testutil.CreateWishlist(t, db, "Birthday")
	testutil.CreateGift(t, db, w.ID, "Book", 0)
	_, err := saved.Create(ctx, &models.SavedWishlist{BrowserID: "b1", WishlistID: w.ID})
	require.NoError(t, err)

	_, err = repo.Delete(ctx, w.ID)
	require.NoError(t, err)

	var gifts, entries int64
	require.NoError(t, db.Model(&models.Gift{}).Count(&gifts).Error)
	require.NoError(t, db.Model(&models.SavedWishlist{}).Count(&entries).Error)
	assert.Zero(t, gifts)
	assert.Zero(t, entries)
}

func TestWishlistRepository_ReadsFromReplica(t *testing.T) {
	primary := testutil.NewSQLiteDB(t)
	replica := testutil.NewSQLiteDB(t)
	repo := NewWishlistRepository(primary, WithReadDB(replica))
	ctx := context.Background()

	w := testutil.CreateWishlist(t, replica, "Replica only")
	testutil.Publish(t, replica, w, "3f2b8c1e-8a4d-4f4e-9b1a-2c3d4e5f6a7b")

	found, err := repo.GetByToken(ctx, w.Token())
	require.NoError(t, err)
	assert.Equal(t, "Replica only", found.Title)

	_, err = repo.GetByID(ctx, w.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
