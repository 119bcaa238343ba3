package models

import "time"

// SavedWishlist bookmarks a wishlist for an anonymous browser.
type SavedWishlist struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BrowserID  string    `gorm:"size:36;not null;uniqueIndex:idx_saved_browser_wishlist" json:"browser_id"`
	WishlistID uint      `gorm:"not null;uniqueIndex:idx_saved_browser_wishlist" json:"wishlist_id"`
	Wishlist   *Wishlist `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"-"`
	SavedAt    time.Time `gorm:"autoCreateTime" json:"saved_at"`
}

// TableName specifies the table name for GORM.
func (SavedWishlist) TableName() string {
	return "saved_wishlists"
}

// SavedWishlistView is one entry of a browser's saved list.
type SavedWishlistView struct {
	ID          uint      `json:"id"`
	WishlistID  uint      `json:"wishlist_id"`
	Title       string    `json:"title"`
	OwnerName   string    `json:"owner_name"`
	SecretToken *string   `json:"secret_token"`
	SavedAt     time.Time `json:"saved_at"`
}
