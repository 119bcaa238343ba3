// Package testutil provides shared test fixtures.
package testutil

import (
	"path/filepath"
	"testing"

	"giftshare/internal/database"
	"giftshare/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated file-backed SQLite database with foreign keys
// enforced. A single connection serializes writers like a row lock would.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "giftshare_test.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(path)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(database.PersistentModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// CreateWishlist inserts a draft wishlist.
func CreateWishlist(t testing.TB, db *gorm.DB, title string) *models.Wishlist {
	t.Helper()
	w := &models.Wishlist{Title: title, OwnerName: "Owner"}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("create wishlist: %v", err)
	}
	return w
}

// CreateGift inserts a gift with the given priority into wishlistID.
func CreateGift(t testing.TB, db *gorm.DB, wishlistID uint, name string, priority int) *models.Gift {
	t.Helper()
	g := &models.Gift{WishlistID: wishlistID, Name: name, Priority: priority}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("create gift: %v", err)
	}
	return g
}

// Publish marks w as published with token directly in the database.
func Publish(t testing.TB, db *gorm.DB, w *models.Wishlist, token string) {
	t.Helper()
	if err := db.Model(w).Updates(map[string]any{
		"is_published": true,
		"secret_token": token,
		"published_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}).Error; err != nil {
		t.Fatalf("publish wishlist: %v", err)
	}
	if err := db.First(w, w.ID).Error; err != nil {
		t.Fatalf("reload wishlist: %v", err)
	}
}
