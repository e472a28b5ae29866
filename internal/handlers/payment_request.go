package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pinst/internal/models"
	"pinst/internal/services"
)

type PaymentRequestPaidResponse struct {
	PaymentRequest models.PaymentRequest `json:"paymentRequest"`
	Transaction    models.Transaction    `json:"transaction"`
	Message        models.ChatMessage    `json:"message"`
}

// PayPaymentRequest godoc
// @Summary Оплатить дополнительный счёт
// @Description Только владелец заказа. Сумма списывается с баланса, счёт
// получает статус paid, в переписку пишется системное сообщение — всё
// атомарно.
// @Tags custom-orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID кастомного заказа"
// @Param reqId path string true "ID счёта"
// @Success 200 {object} PaymentRequestPaidResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /custom-orders/{id}/payment-requests/{reqId}/pay [post]
func PayPaymentRequest(db *gorm.DB, cache *services.ChatCache) gin.HandlerFunc {
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
		if order.UserID != user.ID {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		var pr models.PaymentRequest
		if err := db.Where("id = ? AND custom_order_id = ?", c.Param("reqId"), order.ID).First(&pr).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid payment request"})
			return
		}
		if pr.Status != models.PaymentRequestStatusPending {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}
		if user.Balance.LessThan(pr.Amount) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "insufficient balance"})
			return
		}

		now := time.Now()
		var txRec models.Transaction
		var msg models.ChatMessage
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.PaymentRequest{}).
				Where("id = ? AND status = ?", pr.ID, models.PaymentRequestStatusPending).
				Updates(map[string]any{"status": models.PaymentRequestStatusPaid, "paid_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrInvalidTransaction
			}
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("balance", gorm.Expr("balance - ?", pr.Amount)).Error; err != nil {
				return err
			}
			oid := order.OrderID
			txRec = models.Transaction{
				UserID:      user.ID,
				Type:        models.TransactionTypePurchase,
				Amount:      pr.Amount,
				Description: fmt.Sprintf("Payment request: %s", pr.Description),
				OrderID:     &oid,
				Status:      models.TransactionStatusCompleted,
			}
			if err := tx.Create(&txRec).Error; err != nil {
				return err
			}
			msg = models.ChatMessage{
				CustomOrderID: order.ID,
				SenderID:      models.SystemSenderID,
				SenderRole:    models.UserRoleAdmin,
				Message:       fmt.Sprintf("Payment request paid: $%s - %s", pr.Amount.String(), pr.Description),
				Type:          models.MessageTypeSystem,
			}
			return tx.Create(&msg).Error
		})
		if err == gorm.ErrInvalidTransaction {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status changed"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}

		pr.Status = models.PaymentRequestStatusPaid
		pr.PaidAt = &now
		afterMessageCreated(c.Request.Context(), db, cache, order, msg, user)
		if payload, err := json.Marshal(map[string]string{"customOrderId": order.ID, "paymentRequestId": pr.ID}); err == nil {
			notifyAdmins(db, "customorder.payment", payload, "/custom-orders/"+order.ID)
		}
		c.JSON(http.StatusOK, PaymentRequestPaidResponse{PaymentRequest: pr, Transaction: txRec, Message: msg})
	}
}

// CancelPaymentRequest godoc
// @Summary Отменить дополнительный счёт
// @Description Только администратор. Отменить можно только счёт в статусе pending.
// @Tags custom-orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID кастомного заказа"
// @Param reqId path string true "ID счёта"
// @Success 200 {object} models.PaymentRequest
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /custom-orders/{id}/payment-requests/{reqId}/cancel [post]
func CancelPaymentRequest(db *gorm.DB, cache *services.ChatCache) gin.HandlerFunc {
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
		var pr models.PaymentRequest
		if err := db.Where("id = ? AND custom_order_id = ?", c.Param("reqId"), order.ID).First(&pr).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid payment request"})
			return
		}
		if pr.Status != models.PaymentRequestStatusPending {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status"})
			return
		}

		var msg models.ChatMessage
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.PaymentRequest{}).
				Where("id = ? AND status = ?", pr.ID, models.PaymentRequestStatusPending).
				Update("status", models.PaymentRequestStatusCancelled)
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
				Message:       fmt.Sprintf("Payment request cancelled: %s", pr.Description),
				Type:          models.MessageTypeSystem,
			}
			return tx.Create(&msg).Error
		})
		if err == gorm.ErrInvalidTransaction {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status changed"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}

		pr.Status = models.PaymentRequestStatusCancelled
		afterMessageCreated(c.Request.Context(), db, cache, order, msg, user)
		if payload, err := json.Marshal(map[string]string{"customOrderId": order.ID, "paymentRequestId": pr.ID}); err == nil {
			notifyUser(db, order.UserID, "customorder.payment_cancelled", payload, "/custom-orders/"+order.ID)
		}
		c.JSON(http.StatusOK, pr)
	}
}
