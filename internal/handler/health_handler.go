package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/damoang/angple-memo/pkg/cache"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler reports liveness of the API and its backing stores
type HealthHandler struct {
	db    *gorm.DB
	cache cache.Service
}

// NewHealthHandler creates a new HealthHandler; cacheSvc may be nil
func NewHealthHandler(db *gorm.DB, cacheSvc cache.Service) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheSvc}
}

// Check godoc
// @Summary      헬스 체크
// @Description  데이터베이스와 Redis 연결 상태를 확인합니다
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "redis": "disabled"}

	if err := h.pingDB(ctx); err != nil {
		status = http.StatusServiceUnavailable
		checks["database"] = err.Error()
	}
	// redis is optional, so a failed ping degrades but does not fail the check
	if h.cache != nil && h.cache.IsAvailable() {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "angple-memo",
		"time":    time.Now().Unix(),
		"checks":  checks,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
