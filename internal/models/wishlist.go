// Package models contains data structures for the application's domain models.
package models

import "time"

// Wishlist is a named collection of gifts with a Draft -> Published lifecycle.
// IsPublished, SecretToken and PublishedAt are set together at publish time
// and never cleared.
type Wishlist struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	OwnerName   string     `gorm:"size:100;not null" json:"owner_name"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	SecretToken *string    `gorm:"size:36;uniqueIndex" json:"secret_token"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Wishlist) TableName() string {
	return "wishlists"
}

// Token returns the share token, or "" while the wishlist is a draft.
func (w *Wishlist) Token() string {
	if w == nil || w.SecretToken == nil {
		return ""
	}
	return *w.SecretToken
}

// WishlistPatch holds the owner-editable wishlist fields of an update request.
type WishlistPatch struct {
	Title     Optional[string] `json:"title"`
	OwnerName Optional[string] `json:"owner_name"`
}

// Fields lists the patch fields with their validation rules.
func (p WishlistPatch) Fields() []PatchField {
	return []PatchField{
		stringField("title", p.Title, false, "min=1,max=255"),
		stringField("owner_name", p.OwnerName, false, "min=1,max=100"),
	}
}

// Columns returns the minimal set of columns to write.
func (p WishlistPatch) Columns() map[string]any {
	return columnsOf(p.Fields())
}

// WishlistWithGifts is the owner view of a wishlist.
type WishlistWithGifts struct {
	Wishlist
	Gifts []OwnerGift `json:"gifts"`
}

// PublishedWishlist is the publish response: the wishlist plus its share URL.
type PublishedWishlist struct {
	Wishlist
	PublicURL string `json:"public_url"`
}

// PublicWishlist is the visitor view of a published wishlist.
type PublicWishlist struct {
	Title       string       `json:"title"`
	OwnerName   string       `json:"owner_name"`
	PublishedAt *time.Time   `json:"published_at"`
	Gifts       []PublicGift `json:"gifts"`
}
