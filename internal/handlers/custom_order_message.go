package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pinst/internal/customorderchat"
	"pinst/internal/models"
	"pinst/internal/services"
)

// CustomOrderMessageRequest — тело отправки сообщения в чат заказа.
// Для type=payment_request администратор передаёт paymentAmount и
// paymentDescription.
type CustomOrderMessageRequest struct {
	Message            string `json:"message"`
	Type               string `json:"type"`
	PaymentAmount      string `json:"paymentAmount"`
	PaymentDescription string `json:"paymentDescription"`
}

type CustomOrderMessagesResponse struct {
	CustomOrder models.CustomOrder   `json:"customOrder"`
	Messages    []models.ChatMessage `json:"messages"`
}

type PaymentRequestCreatedResponse struct {
	PaymentRequest models.PaymentRequest `json:"paymentRequest"`
	Message        models.ChatMessage    `json:"message"`
}

type MessageCreatedResponse struct {
	Message models.ChatMessage `json:"message"`
}

// ListCustomOrderMessages godoc
// @Summary Переписка кастомного заказа
// @Description Возвращает историю в хронологическом порядке. Доступна владельцу и администратору. Новые сообщения приходят в реальном времени через WebSocket `/ws/custom-orders/{id}/chat`.
// @Tags custom-orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID кастомного заказа"
// @Param cursor query string false "cursor"
// @Param after query string false "after"
// @Success 200 {object} CustomOrderMessagesResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /custom-orders/{id}/messages [get]
func ListCustomOrderMessages(db *gorm.DB) gin.HandlerFunc {
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
		q := db.Where("custom_order_id = ?", order.ID)
		if cursor := c.Query("cursor"); cursor != "" {
			q = q.Where("id > ?", cursor)
		}
		if after := c.Query("after"); after != "" {
			if t, err := time.Parse(time.RFC3339, after); err == nil {
				q = q.Where("created_at > ?", t)
			}
		}
		var msgs []models.ChatMessage
		if err := q.Order("created_at asc").Find(&msgs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		fillSenderNames(db, msgs)
		c.JSON(http.StatusOK, CustomOrderMessagesResponse{CustomOrder: order, Messages: msgs})
	}
}

// fillSenderNames обогащает сообщения именем отправителя.
func fillSenderNames(db *gorm.DB, msgs []models.ChatMessage) {
	names := map[string]string{models.SystemSenderID: "System"}
	for i := range msgs {
		name, ok := names[msgs[i].SenderID]
		if !ok {
			var snd models.User
			if err := db.Select("username").Where("id = ?", msgs[i].SenderID).First(&snd).Error; err == nil {
				name = snd.Username
			}
			names[msgs[i].SenderID] = name
		}
		msgs[i].SenderName = name
	}
}

// CreateCustomOrderMessage godoc
// @Summary Отправить сообщение в чат кастомного заказа
// @Description Обычное сообщение доступно владельцу и администратору. Сообщение с type=payment_request может отправить только администратор: создаётся дополнительный счёт и связанное сообщение в переписке, обе записи атомарно.
// @Tags custom-orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID кастомного заказа"
// @Param input body CustomOrderMessageRequest true "данные"
// @Success 200 {object} MessageCreatedResponse
// @Success 201 {object} PaymentRequestCreatedResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /custom-orders/{id}/messages [post]
func CreateCustomOrderMessage(db *gorm.DB, cache *services.ChatCache) gin.HandlerFunc {
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
		var r CustomOrderMessageRequest
		if err := c.BindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}

		if r.Type == string(models.MessageTypePaymentRequest) {
			if !user.IsAdmin() {
				c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
				return
			}
			amount, err := decimal.NewFromString(r.PaymentAmount)
			if err != nil || !amount.IsPositive() || r.PaymentDescription == "" {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid payment request"})
				return
			}
			var pr models.PaymentRequest
			var msg models.ChatMessage
			err = db.Transaction(func(tx *gorm.DB) error {
				pr = models.PaymentRequest{
					CustomOrderID: order.ID,
					Amount:        amount,
					Description:   r.PaymentDescription,
					Status:        models.PaymentRequestStatusPending,
				}
				if err := tx.Create(&pr).Error; err != nil {
					return err
				}
				msg = models.ChatMessage{
					CustomOrderID: order.ID,
					SenderID:      models.SystemSenderID,
					SenderRole:    models.UserRoleAdmin,
					Message:       fmt.Sprintf("Payment request created: $%s - %s", amount.String(), r.PaymentDescription),
					Type:          models.MessageTypePaymentRequest,
				}
				return tx.Create(&msg).Error
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
				return
			}
			afterMessageCreated(c.Request.Context(), db, cache, order, msg, user)
			c.JSON(http.StatusCreated, PaymentRequestCreatedResponse{PaymentRequest: pr, Message: msg})
			return
		}

		if r.Message == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty message"})
			return
		}
		msg := models.ChatMessage{
			CustomOrderID: order.ID,
			SenderID:      user.ID,
			SenderRole:    user.Role,
			Message:       r.Message,
			Type:          models.MessageTypeMessage,
		}
		if err := db.Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		msg.SenderName = user.Username
		afterMessageCreated(c.Request.Context(), db, cache, order, msg, user)
		c.JSON(http.StatusOK, MessageCreatedResponse{Message: msg})
	}
}

// afterMessageCreated кеширует сообщение, рассылает его по вебсокету
// и уведомляет другую сторону переписки.
func afterMessageCreated(ctx context.Context, db *gorm.DB, cache *services.ChatCache, order models.CustomOrder, msg models.ChatMessage, sender *models.User) {
	if cache != nil {
		_ = cache.AddMessage(ctx, order.ID, msg)
	}
	customorderchat.Broadcast(order.ID, msg)

	// о системных сообщениях уведомляет сама операция, породившая их
	if msg.Type == models.MessageTypeSystem {
		return
	}
	payload, err := json.Marshal(map[string]string{"customOrderId": order.ID, "messageId": msg.ID})
	if err != nil {
		return
	}
	link := "/custom-orders/" + order.ID
	if sender.IsAdmin() {
		notifyUser(db, order.UserID, "customorder.message", payload, link)
	} else {
		notifyAdmins(db, "customorder.message", payload, link)
	}
}
