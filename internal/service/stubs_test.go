package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// wishlistRepoStub is a stub for repository.WishlistRepository.
type wishlistRepoStub struct {
	createFn     func(context.Context, *models.Wishlist) (*models.Wishlist, error)
	getByIDFn    func(context.Context, uint) (*models.Wishlist, error)
	getByTokenFn func(context.Context, string) (*models.Wishlist, error)
	updateFn     func(context.Context, uint, models.WishlistPatch) (*models.Wishlist, error)
	publishFn    func(context.Context, uint, string, time.Time) (bool, error)
	deleteFn     func(context.Context, uint) (bool, error)
	countGiftsFn func(context.Context, uint) (int64, error)
}

func (s *wishlistRepoStub) Create(ctx context.Context, w *models.Wishlist) (*models.Wishlist, error) {
	return s.createFn(ctx, w)
}
func (s *wishlistRepoStub) GetByID(ctx context.Context, id uint) (*models.Wishlist, error) {
	return s.getByIDFn(ctx, id)
}
func (s *wishlistRepoStub) GetByToken(ctx context.Context, token string) (*models.Wishlist, error) {
	return s.getByTokenFn(ctx, token)
}
func (s *wishlistRepoStub) Update(ctx context.Context, id uint, patch models.WishlistPatch) (*models.Wishlist, error) {
	return s.updateFn(ctx, id, patch)
}
func (s *wishlistRepoStub) Publish(ctx context.Context, id uint, token string, at time.Time) (bool, error) {
	return s.publishFn(ctx, id, token, at)
}
func (s *wishlistRepoStub) Delete(ctx context.Context, id uint) (bool, error) {
	return s.deleteFn(ctx, id)
}
func (s *wishlistRepoStub) CountGifts(ctx context.Context, id uint) (int64, error) {
	return s.countGiftsFn(ctx, id)
}

func unexpected(t *testing.T, name string) {
	t.Helper()
	t.Errorf("unexpected call to %s", name)
}

func noopWishlistRepo(t *testing.T) *wishlistRepoStub {
	return &wishlistRepoStub{
		createFn: func(_ context.Context, w *models.Wishlist) (*models.Wishlist, error) {
			w.ID = 1
			return w, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Wishlist, error) {
			return &models.Wishlist{ID: id, Title: "Birthday", OwnerName: "Sam"}, nil
		},
		getByTokenFn: func(_ context.Context, _ string) (*models.Wishlist, error) {
			return nil, gorm.ErrRecordNotFound
		},
		updateFn: func(_ context.Context, _ uint, _ models.WishlistPatch) (*models.Wishlist, error) {
			unexpected(t, "Update")
			return nil, errors.New("unexpected")
		},
		publishFn: func(_ context.Context, _ uint, _ string, _ time.Time) (bool, error) {
			unexpected(t, "Publish")
			return false, errors.New("unexpected")
		},
		deleteFn:     func(_ context.Context, _ uint) (bool, error) { return true, nil },
		countGiftsFn: func(_ context.Context, _ uint) (int64, error) { return 1, nil },
	}
}

// giftRepoStub is a stub for repository.GiftRepository.
type giftRepoStub struct {
	createFn    func(context.Context, *models.Gift) (*models.Gift, error)
	getByIDFn   func(context.Context, uint) (*models.Gift, error)
	listFn      func(context.Context, uint) ([]models.Gift, error)
	updateFn    func(context.Context, uint, models.GiftPatch) (*models.Gift, error)
	deleteFn    func(context.Context, uint) (bool, error)
	reserveFn   func(context.Context, uint, *string, time.Time) (repository.ReserveOutcome, *models.Gift, error)
	belongsFn   func(context.Context, uint, uint) (bool, error)
	randomFn    func(context.Context) (*models.Gift, error)
	reserveHits int
}

func (s *giftRepoStub) Create(ctx context.Context, g *models.Gift) (*models.Gift, error) {
	return s.createFn(ctx, g)
}
func (s *giftRepoStub) GetByID(ctx context.Context, id uint) (*models.Gift, error) {
	return s.getByIDFn(ctx, id)
}
func (s *giftRepoStub) ListByWishlist(ctx context.Context, wishlistID uint) ([]models.Gift, error) {
	return s.listFn(ctx, wishlistID)
}
func (s *giftRepoStub) Update(ctx context.Context, id uint, patch models.GiftPatch) (*models.Gift, error) {
	return s.updateFn(ctx, id, patch)
}
func (s *giftRepoStub) Delete(ctx context.Context, id uint) (bool, error) {
	return s.deleteFn(ctx, id)
}
func (s *giftRepoStub) Reserve(ctx context.Context, id uint, msg *string, at time.Time) (repository.ReserveOutcome, *models.Gift, error) {
	s.reserveHits++
	return s.reserveFn(ctx, id, msg, at)
}
func (s *giftRepoStub) BelongsToWishlist(ctx context.Context, giftID, wishlistID uint) (bool, error) {
	return s.belongsFn(ctx, giftID, wishlistID)
}
func (s *giftRepoStub) RandomFromPublished(ctx context.Context) (*models.Gift, error) {
	return s.randomFn(ctx)
}

func noopGiftRepo(t *testing.T) *giftRepoStub {
	return &giftRepoStub{
		createFn: func(_ context.Context, g *models.Gift) (*models.Gift, error) {
			g.ID = 10
			return g, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Gift, error) {
			return &models.Gift{ID: id, WishlistID: 1, Name: "Book"}, nil
		},
		listFn: func(_ context.Context, _ uint) ([]models.Gift, error) { return []models.Gift{}, nil },
		updateFn: func(_ context.Context, _ uint, _ models.GiftPatch) (*models.Gift, error) {
			unexpected(t, "Gift.Update")
			return nil, errors.New("unexpected")
		},
		deleteFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		reserveFn: func(_ context.Context, _ uint, _ *string, _ time.Time) (repository.ReserveOutcome, *models.Gift, error) {
			unexpected(t, "Reserve")
			return repository.ReserveNoMatch, nil, errors.New("unexpected")
		},
		belongsFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		randomFn:  func(_ context.Context) (*models.Gift, error) { return nil, nil },
	}
}

// savedRepoStub is a stub for repository.SavedWishlistRepository.
type savedRepoStub struct {
	listFn   func(context.Context, string) ([]models.SavedWishlistView, error)
	existsFn func(context.Context, string, uint) (bool, error)
	createFn func(context.Context, *models.SavedWishlist) (*models.SavedWishlist, error)
	deleteFn func(context.Context, string, uint) (bool, error)
}

func (s *savedRepoStub) ListByBrowser(ctx context.Context, browserID string) ([]models.SavedWishlistView, error) {
	return s.listFn(ctx, browserID)
}
func (s *savedRepoStub) Exists(ctx context.Context, browserID string, wishlistID uint) (bool, error) {
	return s.existsFn(ctx, browserID, wishlistID)
}
func (s *savedRepoStub) Create(ctx context.Context, saved *models.SavedWishlist) (*models.SavedWishlist, error) {
	return s.createFn(ctx, saved)
}
func (s *savedRepoStub) Delete(ctx context.Context, browserID string, wishlistID uint) (bool, error) {
	return s.deleteFn(ctx, browserID, wishlistID)
}

func noopSavedRepo() *savedRepoStub {
	return &savedRepoStub{
		listFn:   func(_ context.Context, _ string) ([]models.SavedWishlistView, error) { return []models.SavedWishlistView{}, nil },
		existsFn: func(_ context.Context, _ string, _ uint) (bool, error) { return false, nil },
		createFn: func(_ context.Context, s *models.SavedWishlist) (*models.SavedWishlist, error) {
			s.ID = 5
			return s, nil
		},
		deleteFn: func(_ context.Context, _ string, _ uint) (bool, error) { return true, nil },
	}
}

// assertAppError asserts that err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func ptr[T any](v T) *T { return &v }
