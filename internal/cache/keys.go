package cache

import (
	"context"
	"fmt"
	"time"
)

const PublicWishlistKeyPrefix = "public_wishlist:%s"

// DefaultPublicWishlistTTL applies when no TTL is configured.
const DefaultPublicWishlistTTL = 60 * time.Second

// PublicWishlistKey is the cache key of the public view for token.
func PublicWishlistKey(token string) string {
	return fmt.Sprintf(PublicWishlistKeyPrefix, token)
}

// InvalidatePublicWishlist drops the cached public view for token.
func InvalidatePublicWishlist(ctx context.Context, token string) {
	if token == "" {
		return
	}
	Invalidate(ctx, PublicWishlistKey(token))
}
