package database

import "giftshare/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come first.
func PersistentModels() []any {
	return []any{
		&models.Wishlist{},
		&models.Gift{},
		&models.SavedWishlist{},
	}
}
