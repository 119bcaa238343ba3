// Package repository provides data access layer implementations for the application.
package repository

import "gorm.io/gorm"

// Option configures a repository.
type Option func(*handles)

// WithReadDB routes list and public reads to a replica. A nil replica is ignored.
func WithReadDB(read *gorm.DB) Option {
	return func(h *handles) {
		h.read = read
	}
}

type handles struct {
	db   *gorm.DB
	read *gorm.DB
}

func newHandles(db *gorm.DB, opts []Option) handles {
	h := handles{db: db}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// reader returns the replica when configured, otherwise the primary.
func (h handles) reader() *gorm.DB {
	if h.read != nil {
		return h.read
	}
	return h.db
}
