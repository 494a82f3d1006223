package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"coursepay/internal/shared/utils"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	dbStatus := "ok"

	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			dbStatus = "unreachable"
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "health check", gin.H{
		"status":   status,
		"database": dbStatus,
	})
}
