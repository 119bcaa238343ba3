package seed

import (
	"fmt"
	"log/slog"

	"giftshare/internal/middleware"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	Wishlists        int
	GiftsPerWishlist int
	// PublishRatio is the share of wishlists that get published.
	PublishRatio float64
	// ReserveRatio is the share of published gifts that get reserved.
	ReserveRatio float64
}

// DefaultOptions is used by cmd/seed when no flags are given.
var DefaultOptions = Options{
	Wishlists:        10,
	GiftsPerWishlist: 6,
	PublishRatio:     0.7,
	ReserveRatio:     0.3,
}

// Result counts what a seeding run created.
type Result struct {
	Wishlists int
	Gifts     int
	Published int
	Reserved  int
}

// Seeder populates the database with demo data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, seed)}
}

// ClearAll removes every wishlist, gift and saved entry.
func (s *Seeder) ClearAll() error {
	middleware.Logger.Info("clearing existing data")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE saved_wishlists, gifts, wishlists RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"saved_wishlists", "gifts", "wishlists"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Seed creates opts.Wishlists wishlists with gifts, publishing and reserving
// a share of them. Only gifts of published wishlists are reserved.
func (s *Seeder) Seed(opts Options) (Result, error) {
	var res Result
	middleware.Logger.Info("seeding database",
		slog.Int("wishlists", opts.Wishlists),
		slog.Int("gifts_per_wishlist", opts.GiftsPerWishlist),
	)

	for i := 0; i < opts.Wishlists; i++ {
		w, err := s.factory.CreateWishlist()
		if err != nil {
			return res, err
		}
		res.Wishlists++

		gifts, err := s.factory.CreateGiftsBatch(w.ID, opts.GiftsPerWishlist)
		if err != nil {
			return res, err
		}
		res.Gifts += len(gifts)

		if len(gifts) == 0 || !s.factory.Chance(opts.PublishRatio) {
			continue
		}
		if err := s.factory.Publish(w); err != nil {
			return res, err
		}
		res.Published++

		for j := range gifts {
			if !s.factory.Chance(opts.ReserveRatio) {
				continue
			}
			if err := s.factory.Reserve(&gifts[j]); err != nil {
				return res, err
			}
			res.Reserved++
		}
	}

	middleware.Logger.Info("seeding completed",
		slog.Int("wishlists", res.Wishlists),
		slog.Int("gifts", res.Gifts),
		slog.Int("published", res.Published),
		slog.Int("reserved", res.Reserved),
	)
	return res, nil
}
