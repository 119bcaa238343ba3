// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math"
	"time"

	"giftshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, faker: gofakeit.New(seed), now: time.Now}
}

// BuildWishlist returns an unsaved draft wishlist.
func (f *Factory) BuildWishlist() *models.Wishlist {
	occasions := []string{"Birthday", "Christmas", "Wedding", "Housewarming", "Graduation", "Baby shower"}
	owner := f.faker.FirstName()
	return &models.Wishlist{
		Title:     fmt.Sprintf("%s's %s", owner, occasions[f.faker.Number(0, len(occasions)-1)]),
		OwnerName: owner + " " + f.faker.LastName(),
	}
}

// BuildGift returns an unsaved gift of wishlistID. Optional fields are left
// empty some of the time so both shapes show up in the demo data.
func (f *Factory) BuildGift(wishlistID uint) *models.Gift {
	g := &models.Gift{
		WishlistID: wishlistID,
		Name:       f.faker.ProductName(),
		Priority:   f.faker.Number(0, 5),
	}
	if f.faker.Number(0, 3) > 0 {
		price := math.Round(f.faker.Price(5, 250)*100) / 100
		g.Price = &price
	}
	if f.faker.Bool() {
		link := f.faker.URL()
		g.Link = &link
	}
	if f.faker.Bool() {
		img := fmt.Sprintf("https://picsum.photos/seed/%s/600/600", f.faker.UUID())
		g.ImageURL = &img
	}
	if f.faker.Number(0, 2) == 0 {
		notes := f.faker.Sentence(8)
		g.Notes = &notes
	}
	return g
}

// CreateWishlist persists a new draft wishlist.
func (f *Factory) CreateWishlist(overrides ...func(*models.Wishlist)) (*models.Wishlist, error) {
	w := f.BuildWishlist()
	for _, override := range overrides {
		override(w)
	}
	if err := f.db.Create(w).Error; err != nil {
		return nil, fmt.Errorf("create wishlist: %w", err)
	}
	return w, nil
}

// CreateGiftsBatch persists count gifts of wishlistID in a single insert.
func (f *Factory) CreateGiftsBatch(wishlistID uint, count int) ([]models.Gift, error) {
	if count <= 0 {
		return nil, nil
	}
	gifts := make([]models.Gift, 0, count)
	for i := 0; i < count; i++ {
		gifts = append(gifts, *f.BuildGift(wishlistID))
	}
	if err := f.db.CreateInBatches(&gifts, 100).Error; err != nil {
		return nil, fmt.Errorf("create gifts: %w", err)
	}
	return gifts, nil
}

// Publish freezes w with a fresh token.
func (f *Factory) Publish(w *models.Wishlist) error {
	token := uuid.NewString()
	at := f.now().UTC()
	if err := f.db.Model(w).Updates(map[string]any{
		"is_published": true,
		"secret_token": token,
		"published_at": at,
	}).Error; err != nil {
		return fmt.Errorf("publish wishlist %d: %w", w.ID, err)
	}
	w.IsPublished = true
	w.SecretToken = &token
	w.PublishedAt = &at
	return nil
}

// Reserve marks g as reserved with a short visitor note half of the time.
func (f *Factory) Reserve(g *models.Gift) error {
	var msg *string
	if f.faker.Bool() {
		m := fmt.Sprintf("From %s", f.faker.FirstName())
		msg = &m
	}
	at := f.now().UTC()
	if err := f.db.Model(g).Updates(map[string]any{
		"is_reserved":         true,
		"reservation_message": msg,
		"reserved_at":         at,
	}).Error; err != nil {
		return fmt.Errorf("reserve gift %d: %w", g.ID, err)
	}
	g.IsReserved = true
	g.ReservationMessage = msg
	g.ReservedAt = &at
	return nil
}

// Chance reports true with probability ratio.
func (f *Factory) Chance(ratio float64) bool {
	if ratio <= 0 {
		return false
	}
	return float64(f.faker.Number(0, 99)) < ratio*100
}
