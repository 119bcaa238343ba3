package service

import (
	"context"
	"errors"

	"giftshare/internal/models"
	"giftshare/internal/repository"
	"giftshare/internal/validation"

	"gorm.io/gorm"
)

type SavedService struct {
	saved     repository.SavedWishlistRepository
	wishlists repository.WishlistRepository
	validator *validation.Validator
}

type SaveInput struct {
	BrowserID  string `json:"browser_id" validate:"required,uuid"`
	WishlistID uint   `json:"wishlist_id" validate:"required,gt=0"`
}

func NewSavedService(saved repository.SavedWishlistRepository, wishlists repository.WishlistRepository) *SavedService {
	return &SavedService{
		saved:     saved,
		wishlists: wishlists,
		validator: validation.Default(),
	}
}

func (s *SavedService) requireBrowserID(browserID string) error {
	if !s.validator.IsUUID(browserID) {
		return models.NewValidationErrorWithDetails("Validation failed", map[string]string{
			"browser_id": "must be a valid UUID",
		})
	}
	return nil
}

// List returns the browser's saved wishlists that are published, newest first.
func (s *SavedService) List(ctx context.Context, browserID string) ([]models.SavedWishlistView, error) {
	if err := s.requireBrowserID(browserID); err != nil {
		return nil, err
	}
	views, err := s.saved.ListByBrowser(ctx, browserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

func (s *SavedService) Save(ctx context.Context, in SaveInput) (*models.SavedWishlist, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if _, err := s.wishlists.GetByID(ctx, in.WishlistID); err != nil {
		return nil, translate(err, "Wishlist", in.WishlistID)
	}

	exists, err := s.saved.Exists(ctx, in.BrowserID, in.WishlistID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if exists {
		return nil, models.NewConflictError("Wishlist already saved")
	}

	saved, err := s.saved.Create(ctx, &models.SavedWishlist{BrowserID: in.BrowserID, WishlistID: in.WishlistID})
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, models.NewConflictError("Wishlist already saved")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return nil, models.NewNotFoundError("Wishlist", in.WishlistID)
	case err != nil:
		return nil, models.NewInternalError(err)
	}
	return saved, nil
}

func (s *SavedService) Remove(ctx context.Context, browserID string, wishlistID uint) error {
	if err := s.requireBrowserID(browserID); err != nil {
		return err
	}
	removed, err := s.saved.Delete(ctx, browserID, wishlistID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !removed {
		return models.NewNotFoundMessage("Saved wishlist not found")
	}
	return nil
}
