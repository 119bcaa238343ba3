// Package notifications publishes wishlist events over Redis pub/sub.
package notifications

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PublishedChannel carries one message per newly published wishlist.
const PublishedChannel = "wishlists:published"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPublished announces a newly published wishlist. It is a no-op
// without Redis.
func (n *Notifier) PublishPublished(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, PublishedChannel, payload).Err()
}
