package repository

import (
	"context"
	"fmt"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/observability"

	"gorm.io/gorm"
)

// ReserveOutcome reports whether a conditional reservation matched a row.
type ReserveOutcome int

const (
	// ReserveNoMatch means no unreserved gift with that id existed.
	ReserveNoMatch ReserveOutcome = iota
	// ReserveUpdated means this call flipped the gift to reserved.
	ReserveUpdated
)

func (o ReserveOutcome) String() string {
	if o == ReserveUpdated {
		return "updated"
	}
	return "no_match"
}

// GiftRepository defines interface for gift operations
type GiftRepository interface {
	Create(ctx context.Context, gift *models.Gift) (*models.Gift, error)
	GetByID(ctx context.Context, id uint) (*models.Gift, error)
	ListByWishlist(ctx context.Context, wishlistID uint) ([]models.Gift, error)
	Update(ctx context.Context, id uint, patch models.GiftPatch) (*models.Gift, error)
	Delete(ctx context.Context, id uint) (bool, error)
	Reserve(ctx context.Context, id uint, message *string, at time.Time) (ReserveOutcome, *models.Gift, error)
	BelongsToWishlist(ctx context.Context, giftID, wishlistID uint) (bool, error)
	RandomFromPublished(ctx context.Context) (*models.Gift, error)
}

type giftRepository struct {
	handles
}

// NewGiftRepository creates a new GiftRepository
func NewGiftRepository(db *gorm.DB, opts ...Option) GiftRepository {
	return &giftRepository{handles: newHandles(db, opts)}
}

func (r *giftRepository) Create(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	defer observability.TrackQuery("insert", "gifts")()

	if err := r.db.WithContext(ctx).Create(gift).Error; err != nil {
		return nil, fmt.Errorf("create gift: %w", err)
	}
	created, err := r.GetByID(ctx, gift.ID)
	if err != nil {
		return nil, fmt.Errorf("read back gift %d: %w", gift.ID, err)
	}
	return created, nil
}

// GetByID reads from the primary; callers rely on it right after writes.
func (r *giftRepository) GetByID(ctx context.Context, id uint) (*models.Gift, error) {
	var gift models.Gift
	if err := r.db.WithContext(ctx).First(&gift, id).Error; err != nil {
		return nil, fmt.Errorf("get gift %d: %w", id, err)
	}
	return &gift, nil
}

func (r *giftRepository) ListByWishlist(ctx context.Context, wishlistID uint) ([]models.Gift, error) {
	defer observability.TrackQuery("select", "gifts")()

	gifts := []models.Gift{}
	err := r.reader().WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("priority DESC").Order("created_at ASC").Order("id ASC").
		Find(&gifts).Error
	if err != nil {
		return nil, fmt.Errorf("list gifts of wishlist %d: %w", wishlistID, err)
	}
	return gifts, nil
}

func (r *giftRepository) Update(ctx context.Context, id uint, patch models.GiftPatch) (*models.Gift, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return r.GetByID(ctx, id)
	}
	defer observability.TrackQuery("update", "gifts")()

	result := r.db.WithContext(ctx).Model(&models.Gift{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return nil, fmt.Errorf("update gift %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update gift %d: %w", id, gorm.ErrRecordNotFound)
	}
	return r.GetByID(ctx, id)
}

func (r *giftRepository) Delete(ctx context.Context, id uint) (bool, error) {
	defer observability.TrackQuery("delete", "gifts")()

	result := r.db.WithContext(ctx).Delete(&models.Gift{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("delete gift %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Reserve flips an unreserved gift to reserved in a single conditional
// UPDATE. Of any number of concurrent callers exactly one sees ReserveUpdated.
func (r *giftRepository) Reserve(ctx context.Context, id uint, message *string, at time.Time) (ReserveOutcome, *models.Gift, error) {
	defer observability.TrackQuery("reserve", "gifts")()

	result := r.db.WithContext(ctx).Model(&models.Gift{}).
		Where("id = ? AND is_reserved = ?", id, false).
		Updates(map[string]any{
			"is_reserved":         true,
			"reservation_message": message,
			"reserved_at":         at,
			"updated_at":          at,
		})
	if result.Error != nil {
		return ReserveNoMatch, nil, fmt.Errorf("reserve gift %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ReserveNoMatch, nil, nil
	}

	gift, err := r.GetByID(ctx, id)
	if err != nil {
		return ReserveUpdated, nil, err
	}
	return ReserveUpdated, gift, nil
}

func (r *giftRepository) BelongsToWishlist(ctx context.Context, giftID, wishlistID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Gift{}).
		Where("id = ? AND wishlist_id = ?", giftID, wishlistID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check gift %d in wishlist %d: %w", giftID, wishlistID, err)
	}
	return count > 0, nil
}

// RandomFromPublished picks one unreserved gift of any published wishlist.
// ORDER BY RANDOM() sorts the whole candidate set, so cost grows with the
// number of unreserved published gifts.
func (r *giftRepository) RandomFromPublished(ctx context.Context) (*models.Gift, error) {
	defer observability.TrackQuery("random", "gifts")()

	var gifts []models.Gift
	err := r.reader().WithContext(ctx).
		Joins("JOIN wishlists ON wishlists.id = gifts.wishlist_id").
		Where("wishlists.is_published = ? AND gifts.is_reserved = ?", true, false).
		Order("RANDOM()").
		Limit(1).
		Find(&gifts).Error
	if err != nil {
		return nil, fmt.Errorf("pick random gift: %w", err)
	}
	if len(gifts) == 0 {
		return nil, nil
	}
	return &gifts[0], nil
}
