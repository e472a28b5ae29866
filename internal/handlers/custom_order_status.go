package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"pinst/internal/models"
	"pinst/internal/services"
)

// completionPolicy вычищает опасную разметку из completionInfo перед хранением.
var completionPolicy = bluemonday.UGCPolicy()

// UpdateCustomOrderRequest — тело смены статуса кастомного заказа.
type UpdateCustomOrderRequest struct {
	Status         string `json:"status"`
	CompletionInfo string `json:"completionInfo"`
}

type CustomOrderUpdatedResponse struct {
	CustomOrder models.CustomOrder `json:"customOrder"`
	Message     models.ChatMessage `json:"message"`
}

// UpdateCustomOrderStatus godoc
// @Summary Сменить статус кастомного заказа
// @Description Только администратор. Статус движется строго вперёд по одному
// шагу: chat -> specs_approved -> in_development -> completed, completed —
// терминальный. Смена статуса и системное сообщение в переписке записываются
// атомарно. При завершении сохраняется completionInfo (после санитизации) и
// проставляется completedAt.
// @Tags custom-orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID кастомного заказа"
// @Param input body UpdateCustomOrderRequest true "новый статус"
// @Success 200 {object} CustomOrderUpdatedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /custom-orders/{id} [patch]
func UpdateCustomOrderStatus(db *gorm.DB, cache *services.ChatCache) gin.HandlerFunc {
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
		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		var r UpdateCustomOrderRequest
		if err := c.BindJSON(&r); err != nil || r.Status == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		newStatus := models.CustomOrderStatus(r.Status)
		if !newStatus.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}
		if !order.Status.CanTransitionTo(newStatus) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid transition"})
			return
		}

		text := fmt.Sprintf("Order status updated to: %s", newStatus)
		upd := map[string]any{"status": newStatus}
		var completedAt *time.Time
		if newStatus == models.CustomOrderStatusCompleted {
			now := time.Now()
			completedAt = &now
			upd["completed_at"] = now
			if r.CompletionInfo != "" {
				upd["completion_info"] = completionPolicy.Sanitize(r.CompletionInfo)
			}
			text += ". Project completed!"
		}

		var msg models.ChatMessage
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.CustomOrder{}).
				Where("id = ? AND status = ?", order.ID, order.Status).
				Updates(upd)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrInvalidTransaction
			}
			msg = models.ChatMessage{
				CustomOrderID: order.ID,
				SenderID:      models.SystemSenderID,
				SenderRole:    models.UserRoleAdmin,
				Message:       text,
				Type:          models.MessageTypeSystem,
			}
			return tx.Create(&msg).Error
		})
		if err == gorm.ErrInvalidTransaction {
			// статус поменял другой администратор между чтением и записью
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status changed"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}

		order.Status = newStatus
		order.CompletedAt = completedAt
		if v, ok := upd["completion_info"]; ok {
			s := v.(string)
			order.CompletionInfo = &s
		}

		afterMessageCreated(c.Request.Context(), db, cache, order, msg, user)
		if payload, err := json.Marshal(map[string]string{"customOrderId": order.ID, "status": string(newStatus)}); err == nil {
			notifyUser(db, order.UserID, "customorder.status", payload, "/custom-orders/"+order.ID)
		}
		c.JSON(http.StatusOK, CustomOrderUpdatedResponse{CustomOrder: order, Message: msg})
	}
}
