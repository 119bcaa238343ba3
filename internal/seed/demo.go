package seed

import (
	"errors"
	"fmt"
	"time"

	"giftshare/internal/models"

	"gorm.io/gorm"
)

// DemoToken is the share token of the built-in demo wishlist.
const DemoToken = "5eed0000-0000-4000-8000-000000000001"

// DemoGift is one gift of the built-in demo wishlist.
type DemoGift struct {
	Name     string
	Priority int
	Price    float64
}

// DemoGifts defines the gifts of the built-in demo wishlist.
var DemoGifts = []DemoGift{
	{Name: "Pour-over coffee kettle", Priority: 5, Price: 45},
	{Name: "Hardcover notebook", Priority: 3, Price: 18.5},
	{Name: "Board game night", Priority: 2, Price: 35},
	{Name: "Houseplant", Priority: 1, Price: 22},
}

// Demo ensures the published demo wishlist exists. It is safe to run on
// every start.
func Demo(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.Wishlist
		err := tx.Where("secret_token = ?", DemoToken).First(&existing).Error
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("look up demo wishlist: %w", err)
		}

		token := DemoToken
		now := time.Now().UTC()
		w := models.Wishlist{
			Title:     "Demo wishlist",
			OwnerName: "GiftShare",
		}
		if err := tx.Create(&w).Error; err != nil {
			return fmt.Errorf("create demo wishlist: %w", err)
		}

		gifts := make([]models.Gift, 0, len(DemoGifts))
		for _, item := range DemoGifts {
			price := item.Price
			gifts = append(gifts, models.Gift{
				WishlistID: w.ID,
				Name:       item.Name,
				Priority:   item.Priority,
				Price:      &price,
			})
		}
		if err := tx.Create(&gifts).Error; err != nil {
			return fmt.Errorf("create demo gifts: %w", err)
		}

		return tx.Model(&w).Updates(map[string]any{
			"is_published": true,
			"secret_token": token,
			"published_at": now,
		}).Error
	})
}
