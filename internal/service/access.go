package service

import (
	"errors"
	"fmt"

	"giftshare/internal/models"

	"gorm.io/gorm"
)

// requireDraft rejects mutations of a published wishlist.
func requireDraft(w *models.Wishlist, action string) error {
	if w.IsPublished {
		return models.NewPermissionDeniedError(fmt.Sprintf("Cannot %s a published wishlist", action))
	}
	return nil
}

// requirePublished hides drafts from token holders.
func requirePublished(w *models.Wishlist) error {
	if w == nil || !w.IsPublished {
		return models.NewNotFoundMessage("Wishlist not found")
	}
	return nil
}

// translate maps repository errors onto the AppError taxonomy.
func translate(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
