package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pinst/internal/models"
)

// ListCustomOrders godoc
// @Summary Список кастомных заказов
// @Description Пользователь видит свои, администратор — все.
// @Tags custom-orders
// @Security BearerAuth
// @Produce json
// @Param status query string false "фильтр по статусу"
// @Success 200 {array} models.CustomOrder
// @Router /custom-orders [get]
func ListCustomOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		q := db.Model(&models.CustomOrder{})
		if !user.IsAdmin() {
			q = q.Where("user_id = ?", user.ID)
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		limit, offset := parsePagination(c)
		var orders []models.CustomOrder
		if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// loadCustomOrderFull собирает заказ с товаром, перепиской и счетами.
func loadCustomOrderFull(db *gorm.DB, order models.CustomOrder) (models.CustomOrderFull, error) {
	full := models.CustomOrderFull{CustomOrder: order}
	if err := db.Where("id = ?", order.ProductID).First(&full.Product).Error; err != nil &&
		err != gorm.ErrRecordNotFound {
		return full, err
	}
	if err := db.Where("custom_order_id = ?", order.ID).
		Order("created_at asc").Find(&full.ChatMessages).Error; err != nil {
		return full, err
	}
	if err := db.Where("custom_order_id = ?", order.ID).
		Order("created_at asc").Find(&full.AdditionalPaymentRequests).Error; err != nil {
		return full, err
	}
	return full, nil
}

// GetCustomOrder godoc
// @Summary Кастомный заказ по ID
// @Description Возвращает заказ вместе с перепиской и дополнительными счетами.
// @Tags custom-orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID кастомного заказа"
// @Success 200 {object} models.CustomOrderFull
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /custom-orders/{id} [get]
func GetCustomOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		var order models.CustomOrder
		if err := db.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid custom order"})
			return
		}
		if !canAccessCustomOrder(user, &order) {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		full, err := loadCustomOrderFull(db, order)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, full)
	}
}
