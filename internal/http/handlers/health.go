package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/learnpages/internal/http/response"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports ok when the database, and redis if configured,
// answer a ping.
type HealthHandler struct {
	db  *gorm.DB
	rdb *goredis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *goredis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, "unhealthy", err)
		return
	}
	c.String(http.StatusOK, "ok")
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
