package repository

import (
	"context"
	"fmt"

	"giftshare/internal/models"
	"giftshare/internal/observability"

	"gorm.io/gorm"
)

// SavedWishlistRepository defines interface for a browser's saved wishlists
type SavedWishlistRepository interface {
	ListByBrowser(ctx context.Context, browserID string) ([]models.SavedWishlistView, error)
	Exists(ctx context.Context, browserID string, wishlistID uint) (bool, error)
	Create(ctx context.Context, saved *models.SavedWishlist) (*models.SavedWishlist, error)
	Delete(ctx context.Context, browserID string, wishlistID uint) (bool, error)
}

type savedWishlistRepository struct {
	handles
}

// NewSavedWishlistRepository creates a new SavedWishlistRepository
func NewSavedWishlistRepository(db *gorm.DB, opts ...Option) SavedWishlistRepository {
	return &savedWishlistRepository{handles: newHandles(db, opts)}
}

// ListByBrowser returns saved entries whose wishlist is published, newest first.
func (r *savedWishlistRepository) ListByBrowser(ctx context.Context, browserID string) ([]models.SavedWishlistView, error) {
	defer observability.TrackQuery("select", "saved_wishlists")()

	views := []models.SavedWishlistView{}
	err := r.reader().WithContext(ctx).
		Table("saved_wishlists").
		Select("saved_wishlists.id, saved_wishlists.wishlist_id, wishlists.title, wishlists.owner_name, wishlists.secret_token, saved_wishlists.saved_at").
		Joins("JOIN wishlists ON wishlists.id = saved_wishlists.wishlist_id").
		Where("saved_wishlists.browser_id = ? AND wishlists.is_published = ?", browserID, true).
		Order("saved_wishlists.saved_at DESC").
		Order("saved_wishlists.id DESC").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("list saved wishlists: %w", err)
	}
	return views, nil
}

func (r *savedWishlistRepository) Exists(ctx context.Context, browserID string, wishlistID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SavedWishlist{}).
		Where("browser_id = ? AND wishlist_id = ?", browserID, wishlistID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check saved wishlist: %w", err)
	}
	return count > 0, nil
}

// Create inserts the entry. A concurrent duplicate surfaces as gorm.ErrDuplicatedKey.
func (r *savedWishlistRepository) Create(ctx context.Context, saved *models.SavedWishlist) (*models.SavedWishlist, error) {
	defer observability.TrackQuery("insert", "saved_wishlists")()

	if err := r.db.WithContext(ctx).Create(saved).Error; err != nil {
		return nil, fmt.Errorf("save wishlist %d: %w", saved.WishlistID, err)
	}
	return saved, nil
}

func (r *savedWishlistRepository) Delete(ctx context.Context, browserID string, wishlistID uint) (bool, error) {
	defer observability.TrackQuery("delete", "saved_wishlists")()

	result := r.db.WithContext(ctx).
		Where("browser_id = ? AND wishlist_id = ?", browserID, wishlistID).
		Delete(&models.SavedWishlist{})
	if result.Error != nil {
		return false, fmt.Errorf("remove saved wishlist %d: %w", wishlistID, result.Error)
	}
	return result.RowsAffected > 0, nil
}
