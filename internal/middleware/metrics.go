package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftshare_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// RateLimitRejections counts requests rejected by the Redis rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftshare_rate_limit_rejections_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"resource"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide fiberprometheus instance. The collectors
// live in the default registry, so they are created once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request count and latency, skipping the scrape endpoint.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := p.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return handler(c)
	}
}
