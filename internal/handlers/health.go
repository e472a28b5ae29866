package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health godoc
// @Summary Доступность API магазина
// @Description Пингует базу; при недоступности отвечает 503, чтобы балансировщик вывел инстанс из ротации.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} ErrorResponse
// @Router /health [get]
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "db unavailable"})
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
	}
}
