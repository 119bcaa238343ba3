package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcome labels.
const (
	ReservationReserved = "reserved"
	ReservationConflict = "conflict"
	ReservationNotFound = "not_found"
	ReservationInvalid  = "invalid"
	ReservationError    = "error"
)

var (
	// ReservationsTotal counts reservation attempts by outcome.
	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftshare_reservations_total",
		Help: "Total number of gift reservation attempts by outcome",
	}, []string{"outcome"})

	// WishlistsPublishedTotal counts successful publications.
	WishlistsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftshare_wishlists_published_total",
		Help: "Total number of wishlists published",
	})

	// PublicViewCacheTotal counts public view cache lookups by result (hit, miss, error).
	PublicViewCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftshare_public_view_cache_total",
		Help: "Public wishlist cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "giftshare_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordReservation increments the reservation counter for outcome.
func RecordReservation(outcome string) {
	ReservationsTotal.WithLabelValues(outcome).Inc()
}
