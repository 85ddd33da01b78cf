package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/deptsched/timetable-api/pkg/response"
)

// HealthHandler reports liveness and readiness for the planning API.
type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health reports process liveness without checking dependencies.
func (h *HealthHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}

// Ready reports whether the database and cache dependencies are reachable.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "unready", "reason": "database"}, nil)
		return
	}
	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			response.JSON(c, http.StatusServiceUnavailable, gin.H{"status": "unready", "reason": "cache"}, nil)
			return
		}
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}
