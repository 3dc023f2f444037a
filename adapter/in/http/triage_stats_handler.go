package http

import (
	"time"

	"triage_server/infra/database"
	"triage_server/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// StatsHandler exposes pipeline counters, latency distributions and
// connection pool health.
type StatsHandler struct {
	sink  *metrics.Sink
	db    *pgxpool.Pool
	redis *redis.Client
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(sink *metrics.Sink, db *pgxpool.Pool, redisClient *redis.Client) *StatsHandler {
	return &StatsHandler{sink: sink, db: db, redis: redisClient}
}

// Register registers stats routes.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("/stats", h.Stats)
}

// Stats returns a snapshot of all metrics.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	snapshot := h.sink.Snapshot()
	snapshot["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	pools := fiber.Map{}
	if h.db != nil {
		pools["postgres"] = database.GetPoolStats(h.db)
	}
	if h.redis != nil {
		pools["redis"] = database.GetRedisStats(h.redis)
	}
	snapshot["pools"] = pools

	return c.JSON(snapshot)
}
