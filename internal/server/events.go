package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"giftshare/internal/middleware"
)

// EventWishlistPublished is the type of the publish announcement.
const EventWishlistPublished = "wishlist_published"

func marshalEvent(eventType string, payload map[string]any) (string, bool) {
	eventJSON, err := json.Marshal(map[string]any{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		middleware.Logger.Error("failed to marshal event",
			slog.String("type", eventType), slog.String("error", err.Error()))
		return "", false
	}
	return string(eventJSON), true
}

// publishPublishedEvent announces a published wishlist. Delivery is best effort.
func (s *Server) publishPublishedEvent(payload map[string]any) {
	if s.notifier == nil {
		return
	}
	message, ok := marshalEvent(EventWishlistPublished, payload)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.notifier.PublishPublished(ctx, message); err != nil {
		middleware.Logger.Warn("failed to publish wishlist event",
			slog.String("type", EventWishlistPublished), slog.String("error", err.Error()))
	}
}
