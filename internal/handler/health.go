package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/JoakoBallesteros/DonNildo-sub000/internal/infra"
	"github.com/JoakoBallesteros/DonNildo-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The identity breaker state and the DLQ depths are informative only.
func Health(db *gorm.DB, rdb *redis.Client, identityCB *infra.CircuitBreaker, dlqQueues ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if identityCB != nil {
			body["identity"] = identityCB.State().String()
		}
		if redisStatus == "connected" && len(dlqQueues) > 0 {
			dlq := make(map[string]int64, len(dlqQueues))
			for _, q := range dlqQueues {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
			body["dlq"] = dlq
		}
		c.JSON(status, body)
	}
}
