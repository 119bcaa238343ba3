package service

import (
	"context"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/observability"
	"giftshare/internal/repository"
	"giftshare/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type GiftService struct {
	wishlists repository.WishlistRepository
	gifts     repository.GiftRepository
	validator *validation.Validator
	now       func() time.Time
}

type ReserveInput struct {
	Token   string
	GiftID  uint
	Message *string
}

func NewGiftService(wishlists repository.WishlistRepository, gifts repository.GiftRepository) *GiftService {
	return &GiftService{
		wishlists: wishlists,
		gifts:     gifts,
		validator: validation.Default(),
		now:       time.Now,
	}
}

// loadEditable returns the gift when its wishlist is still a draft.
func (s *GiftService) loadEditable(ctx context.Context, id uint, action string) (*models.Gift, *models.Wishlist, error) {
	gift, err := s.gifts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, translate(err, "Gift", id)
	}
	w, err := s.wishlists.GetByID(ctx, gift.WishlistID)
	if err != nil {
		return nil, nil, translate(err, "Wishlist", gift.WishlistID)
	}
	if err := requireDraft(w, action); err != nil {
		return nil, nil, err
	}
	return gift, w, nil
}

func (s *GiftService) UpdateGift(ctx context.Context, id uint, patch models.GiftPatch) (*models.OwnerGift, error) {
	gift, _, err := s.loadEditable(ctx, id, "edit gifts of")
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidatePatch(patch.Fields()); err != nil {
		return nil, err
	}
	if len(patch.Columns()) > 0 {
		gift, err = s.gifts.Update(ctx, id, patch)
		if err != nil {
			return nil, translate(err, "Gift", id)
		}
	}
	view := gift.OwnerView()
	return &view, nil
}

func (s *GiftService) DeleteGift(ctx context.Context, id uint) error {
	if _, _, err := s.loadEditable(ctx, id, "remove gifts from"); err != nil {
		return err
	}
	deleted, err := s.gifts.Delete(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !deleted {
		return models.NewNotFoundError("Gift", id)
	}
	return nil
}

// Random suggests an unreserved gift from any published wishlist.
func (s *GiftService) Random(ctx context.Context) (*models.RandomGift, error) {
	gift, err := s.gifts.RandomFromPublished(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if gift == nil {
		return nil, models.NewNotFoundMessage("No gifts available")
	}
	view := gift.RandomView()
	return &view, nil
}

// Reserve claims a gift of the published wishlist identified by token.
// Exactly one of any number of concurrent callers succeeds; the rest get a
// CONFLICT error.
func (s *GiftService) Reserve(ctx context.Context, in ReserveInput) (_ *models.ReservedGift, err error) {
	ctx, span := observability.StartSpan(ctx, "GiftService", "Reserve", attribute.Int("gift.id", int(in.GiftID)))
	outcome := observability.ReservationError
	defer func() {
		observability.RecordReservation(outcome)
		observability.EndSpan(span, err)
	}()

	msg := models.NormalizeReservationMessage(in.Message)
	if msg != nil {
		if err := s.validator.ValidatePatch([]models.PatchField{{
			Name:  "reservation_message",
			Set:   true,
			Value: *msg,
			Rules: "max=500",
		}}); err != nil {
			outcome = observability.ReservationInvalid
			return nil, err
		}
	}

	w, err := s.wishlists.GetByToken(ctx, in.Token)
	if err == nil {
		err = requirePublished(w)
	}
	if err != nil {
		if err = translate(err, "Wishlist", in.Token); models.IsCode(err, models.CodeNotFound) {
			outcome = observability.ReservationNotFound
			return nil, models.NewNotFoundMessage("Wishlist not found")
		}
		return nil, err
	}

	belongs, err := s.gifts.BelongsToWishlist(ctx, in.GiftID, w.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !belongs {
		outcome = observability.ReservationNotFound
		return nil, models.NewNotFoundError("Gift", in.GiftID)
	}

	result, gift, err := s.gifts.Reserve(ctx, in.GiftID, msg, s.now().UTC())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if result == repository.ReserveNoMatch {
		// Deleted after the membership check, or reserved by someone else.
		stillThere, err := s.gifts.BelongsToWishlist(ctx, in.GiftID, w.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if !stillThere {
			outcome = observability.ReservationNotFound
			return nil, models.NewNotFoundError("Gift", in.GiftID)
		}
		outcome = observability.ReservationConflict
		return nil, models.NewConflictError("Gift is already reserved")
	}

	outcome = observability.ReservationReserved
	view := gift.ReservedView()
	return &view, nil
}
