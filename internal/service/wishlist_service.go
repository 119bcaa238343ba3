// Package service holds the wishlist lifecycle and reservation rules.
package service

import (
	"context"
	"strings"
	"time"

	"giftshare/internal/cache"
	"giftshare/internal/models"
	"giftshare/internal/observability"
	"giftshare/internal/repository"
	"giftshare/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// WishlistConfig carries the settings the wishlist service depends on.
type WishlistConfig struct {
	PublicBaseURL  string
	PublicCacheTTL time.Duration
}

type WishlistService struct {
	wishlists repository.WishlistRepository
	gifts     repository.GiftRepository
	validator *validation.Validator
	cfg       WishlistConfig
	now       func() time.Time
	newToken  func() string
}

type CreateWishlistInput struct {
	Title     string `json:"title" validate:"required,notblank,max=255"`
	OwnerName string `json:"owner_name" validate:"required,notblank,max=100"`
}

type CreateGiftInput struct {
	Name     string   `json:"name" validate:"required,notblank,max=255"`
	ImageURL *string  `json:"image_url" validate:"omitempty,url,max=2048"`
	Link     *string  `json:"link" validate:"omitempty,url,max=2048"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Priority *int     `json:"priority" validate:"omitempty,gte=0,lte=5"`
	Notes    *string  `json:"notes" validate:"omitempty,max=1000"`
}

func (in *CreateWishlistInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.OwnerName = strings.TrimSpace(in.OwnerName)
}

func (in *CreateGiftInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.ImageURL = trimOptional(in.ImageURL)
	in.Link = trimOptional(in.Link)
	in.Notes = trimOptional(in.Notes)
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func NewWishlistService(
	wishlists repository.WishlistRepository,
	gifts repository.GiftRepository,
	cfg WishlistConfig,
) *WishlistService {
	if cfg.PublicCacheTTL <= 0 {
		cfg.PublicCacheTTL = cache.DefaultPublicWishlistTTL
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &WishlistService{
		wishlists: wishlists,
		gifts:     gifts,
		validator: validation.Default(),
		cfg:       cfg,
		now:       time.Now,
		newToken:  uuid.NewString,
	}
}

// PublicURL is the share link for token.
func (s *WishlistService) PublicURL(token string) string {
	return s.cfg.PublicBaseURL + "/wishlist/" + token
}

func (s *WishlistService) Create(ctx context.Context, in CreateWishlistInput) (*models.Wishlist, error) {
	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	created, err := s.wishlists.Create(ctx, &models.Wishlist{
		Title:     in.Title,
		OwnerName: in.OwnerName,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// Get returns the owner view: the wishlist and its gifts without reservation state.
func (s *WishlistService) Get(ctx context.Context, id uint) (*models.WishlistWithGifts, error) {
	w, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Wishlist", id)
	}
	gifts, err := s.gifts.ListByWishlist(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.WishlistWithGifts{Wishlist: *w, Gifts: models.OwnerViews(gifts)}, nil
}

func (s *WishlistService) Update(ctx context.Context, id uint, patch models.WishlistPatch) (*models.Wishlist, error) {
	w, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Wishlist", id)
	}
	if err := requireDraft(w, "edit"); err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePatch(patch.Fields()); err != nil {
		return nil, err
	}
	if len(patch.Columns()) == 0 {
		return w, nil
	}

	updated, err := s.wishlists.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, "Wishlist", id)
	}
	return updated, nil
}

// Publish moves a draft with at least one gift to Published and assigns its
// share token. Publication is one-way.
func (s *WishlistService) Publish(ctx context.Context, id uint) (_ *models.PublishedWishlist, err error) {
	ctx, span := observability.StartSpan(ctx, "WishlistService", "Publish", attribute.Int("wishlist.id", int(id)))
	defer func() { observability.EndSpan(span, err) }()

	w, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Wishlist", id)
	}
	if err := requireDraft(w, "publish"); err != nil {
		return nil, err
	}

	count, err := s.wishlists.CountGifts(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if count == 0 {
		return nil, models.NewValidationErrorWithDetails("Cannot publish an empty wishlist", map[string]string{
			"gifts": "add at least one gift before publishing",
		})
	}

	ok, err := s.wishlists.Publish(ctx, id, s.newToken(), s.now().UTC())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !ok {
		// Lost a race: either published concurrently or deleted meanwhile.
		if _, err := s.wishlists.GetByID(ctx, id); err != nil {
			return nil, translate(err, "Wishlist", id)
		}
		return nil, models.NewPermissionDeniedError("Cannot publish a published wishlist")
	}

	published, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "Wishlist", id)
	}
	observability.WishlistsPublishedTotal.Inc()
	return &models.PublishedWishlist{Wishlist: *published, PublicURL: s.PublicURL(published.Token())}, nil
}

// Delete removes a wishlist in any state together with its gifts and saved entries.
func (s *WishlistService) Delete(ctx context.Context, id uint) error {
	w, err := s.wishlists.GetByID(ctx, id)
	if err != nil {
		return translate(err, "Wishlist", id)
	}
	deleted, err := s.wishlists.Delete(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !deleted {
		return models.NewNotFoundError("Wishlist", id)
	}
	cache.InvalidatePublicWishlist(ctx, w.Token())
	return nil
}

// publicHeader is the cached part of the visitor view. Gifts carry
// reservation state and are always read from the database.
type publicHeader struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	OwnerName   string     `json:"owner_name"`
	PublishedAt *time.Time `json:"published_at"`
}

// GetPublic returns the visitor view of a published wishlist. The header is
// served from the cache when possible; the gift list never is.
func (s *WishlistService) GetPublic(ctx context.Context, token string) (*models.PublicWishlist, error) {
	var header publicHeader
	hit, err := cache.Aside(ctx, cache.PublicWishlistKey(token), &header, s.cfg.PublicCacheTTL, func() error {
		w, err := s.wishlists.GetByToken(ctx, token)
		if err != nil {
			return translate(err, "Wishlist", token)
		}
		if err := requirePublished(w); err != nil {
			return err
		}
		header = publicHeader{ID: w.ID, Title: w.Title, OwnerName: w.OwnerName, PublishedAt: w.PublishedAt}
		return nil
	})
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundMessage("Wishlist not found")
		}
		return nil, err
	}
	if hit {
		observability.PublicViewCacheTotal.WithLabelValues("hit").Inc()
	} else {
		observability.PublicViewCacheTotal.WithLabelValues("miss").Inc()
	}

	gifts, err := s.gifts.ListByWishlist(ctx, header.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.PublicWishlist{
		Title:       header.Title,
		OwnerName:   header.OwnerName,
		PublishedAt: header.PublishedAt,
		Gifts:       models.PublicViews(gifts),
	}, nil
}

func (s *WishlistService) AddGift(ctx context.Context, wishlistID uint, in CreateGiftInput) (*models.OwnerGift, error) {
	w, err := s.wishlists.GetByID(ctx, wishlistID)
	if err != nil {
		return nil, translate(err, "Wishlist", wishlistID)
	}
	if err := requireDraft(w, "add gifts to"); err != nil {
		return nil, err
	}

	in.normalize()
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	gift := &models.Gift{
		WishlistID: wishlistID,
		Name:       in.Name,
		ImageURL:   in.ImageURL,
		Link:       in.Link,
		Price:      in.Price,
		Notes:      in.Notes,
	}
	if in.Priority != nil {
		gift.Priority = *in.Priority
	}

	created, err := s.gifts.Create(ctx, gift)
	if err != nil {
		return nil, translate(err, "Wishlist", wishlistID)
	}
	view := created.OwnerView()
	return &view, nil
}

// ListGifts returns the owner projection; an unknown wishlist yields an empty list.
func (s *WishlistService) ListGifts(ctx context.Context, wishlistID uint) ([]models.OwnerGift, error) {
	gifts, err := s.gifts.ListByWishlist(ctx, wishlistID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return models.OwnerViews(gifts), nil
}
