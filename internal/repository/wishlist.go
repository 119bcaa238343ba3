package repository

import (
	"context"
	"fmt"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/observability"

	"gorm.io/gorm"
)

// WishlistRepository defines interface for wishlist operations
type WishlistRepository interface {
	Create(ctx context.Context, wishlist *models.Wishlist) (*models.Wishlist, error)
	GetByID(ctx context.Context, id uint) (*models.Wishlist, error)
	GetByToken(ctx context.Context, token string) (*models.Wishlist, error)
	Update(ctx context.Context, id uint, patch models.WishlistPatch) (*models.Wishlist, error)
	Publish(ctx context.Context, id uint, token string, at time.Time) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	CountGifts(ctx context.Context, id uint) (int64, error)
}

type wishlistRepository struct {
	handles
}

// NewWishlistRepository creates a new WishlistRepository
func NewWishlistRepository(db *gorm.DB, opts ...Option) WishlistRepository {
	return &wishlistRepository{handles: newHandles(db, opts)}
}

func (r *wishlistRepository) Create(ctx context.Context, wishlist *models.Wishlist) (*models.Wishlist, error) {
	defer observability.TrackQuery("insert", "wishlists")()

	if err := r.db.WithContext(ctx).Create(wishlist).Error; err != nil {
		return nil, fmt.Errorf("create wishlist: %w", err)
	}
	created, err := r.GetByID(ctx, wishlist.ID)
	if err != nil {
		return nil, fmt.Errorf("read back wishlist %d: %w", wishlist.ID, err)
	}
	return created, nil
}

func (r *wishlistRepository) GetByID(ctx context.Context, id uint) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := r.db.WithContext(ctx).First(&wishlist, id).Error; err != nil {
		return nil, fmt.Errorf("get wishlist %d: %w", id, err)
	}
	return &wishlist, nil
}

// GetByToken only matches published wishlists.
func (r *wishlistRepository) GetByToken(ctx context.Context, token string) (*models.Wishlist, error) {
	defer observability.TrackQuery("select", "wishlists")()

	var wishlist models.Wishlist
	err := r.reader().WithContext(ctx).
		Where("secret_token = ? AND is_published = ?", token, true).
		First(&wishlist).Error
	if err != nil {
		return nil, fmt.Errorf("get wishlist by token: %w", err)
	}
	return &wishlist, nil
}

func (r *wishlistRepository) Update(ctx context.Context, id uint, patch models.WishlistPatch) (*models.Wishlist, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}
	defer observability.TrackQuery("update", "wishlists")()

	result := r.db.WithContext(ctx).Model(&models.Wishlist{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return nil, fmt.Errorf("update wishlist %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update wishlist %d: %w", id, gorm.ErrRecordNotFound)
	}
	return r.GetByID(ctx, id)
}

// Publish transitions a draft to published. It reports false when the
// wishlist was already published (or no longer exists), leaving it untouched.
func (r *wishlistRepository) Publish(ctx context.Context, id uint, token string, at time.Time) (bool, error) {
	defer observability.TrackQuery("publish", "wishlists")()

	result := r.db.WithContext(ctx).Model(&models.Wishlist{}).
		Where("id = ? AND is_published = ?", id, false).
		Updates(map[string]any{
			"is_published": true,
			"secret_token": token,
			"published_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, fmt.Errorf("publish wishlist %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Delete removes the wishlist; gifts and saved entries go with it through
// ON DELETE CASCADE.
func (r *wishlistRepository) Delete(ctx context.Context, id uint) (bool, error) {
	defer observability.TrackQuery("delete", "wishlists")()

	result := r.db.WithContext(ctx).Delete(&models.Wishlist{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete wishlist %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *wishlistRepository) CountGifts(ctx context.Context, id uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Gift{}).Where("wishlist_id = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count gifts of wishlist %d: %w", id, err)
	}
	return count, nil
}
