// Command main runs the database seeder for GiftShare.
package main

import (
	"flag"
	"log"

	"giftshare/internal/config"
	"giftshare/internal/database"
	"giftshare/internal/seed"
)

func main() {
	// Parse command line flags
	numWishlists := flag.Int("wishlists", seed.DefaultOptions.Wishlists, "Number of wishlists to create")
	numGifts := flag.Int("gifts", seed.DefaultOptions.GiftsPerWishlist, "Gifts per wishlist")
	publishRatio := flag.Float64("publish", seed.DefaultOptions.PublishRatio, "Share of wishlists to publish (0-1)")
	reserveRatio := flag.Float64("reserve", seed.DefaultOptions.ReserveRatio, "Share of published gifts to reserve (0-1)")
	rngSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	demo := flag.Bool("demo", true, "Ensure the demo wishlist exists")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d wishlists x %d gifts, clean=%v", *numWishlists, *numGifts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	s := seed.NewSeeder(db, *rngSeed)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if *demo {
		if err := seed.Demo(db); err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
		log.Printf("Demo wishlist token: %s", seed.DemoToken)
	}

	res, err := s.Seed(seed.Options{
		Wishlists:        *numWishlists,
		GiftsPerWishlist: *numGifts,
		PublishRatio:     *publishRatio,
		ReserveRatio:     *reserveRatio,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done: %d wishlists (%d published), %d gifts (%d reserved)",
		res.Wishlists, res.Published, res.Gifts, res.Reserved)
}
