package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pinst/internal/models"
)

type PromoCodeRequest struct {
	Code      string `json:"code"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	MaxUses   int    `json:"maxUses"`
	ExpiresAt string `json:"expiresAt"`
}

// ListPromoCodes godoc
// @Summary Список промокодов
// @Tags promo-codes
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.PromoCode
// @Router /admin/promo-codes [get]
func ListPromoCodes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var codes []models.PromoCode
		if err := db.Order("created_at desc").Find(&codes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, codes)
	}
}

// CreatePromoCode godoc
// @Summary Создать промокод
// @Tags promo-codes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body PromoCodeRequest true "данные промокода"
// @Success 200 {object} models.PromoCode
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/promo-codes [post]
func CreatePromoCode(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r PromoCodeRequest
		if err := c.BindJSON(&r); err != nil || r.Code == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		typ := models.PromoCodeType(r.Type)
		if typ != models.PromoCodeTypePercentage && typ != models.PromoCodeTypeFixed {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid type"})
			return
		}
		value, err := decimal.NewFromString(r.Value)
		if err != nil || !value.IsPositive() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid value"})
			return
		}
		if r.MaxUses <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid maxUses"})
			return
		}
		expires, err := time.Parse(time.RFC3339, r.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expiresAt"})
			return
		}
		var count int64
		db.Model(&models.PromoCode{}).Where("code = ?", r.Code).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "code exists"})
			return
		}
		pc := models.PromoCode{
			Code:      r.Code,
			Type:      typ,
			Value:     value,
			MaxUses:   r.MaxUses,
			ExpiresAt: expires,
			IsActive:  true,
		}
		if err := db.Create(&pc).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, pc)
	}
}
