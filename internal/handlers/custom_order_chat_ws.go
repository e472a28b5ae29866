package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pinst/internal/customorderchat"
	"pinst/internal/models"
	"pinst/internal/services"
)

// CustomOrderChatWS godoc
// @Summary Websocket чата кастомного заказа
// @Description При подключении отправляет хвост переписки из кеша Redis,
// дальше транслирует новые сообщения. Присланный по сокету текст публикуется
// в чат от имени подключившегося.
// @Tags custom-orders
// @Security BearerAuth
// @Param id path string true "ID кастомного заказа"
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /ws/custom-orders/{id}/chat [get]
func CustomOrderChatWS(db *gorm.DB, cache *services.ChatCache) gin.HandlerFunc {
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
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		customorderchat.AddClient(order.ID, conn)
		defer customorderchat.RemoveClient(order.ID, conn)

		if cache != nil {
			if history, err := cache.GetHistory(c.Request.Context(), order.ID); err == nil {
				for _, m := range history {
					if err := customorderchat.Send(conn, m); err != nil {
						return
					}
				}
			}
		}

		for {
			_, msgBytes, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var r CustomOrderMessageRequest
			if err := json.Unmarshal(msgBytes, &r); err != nil || r.Message == "" {
				continue
			}
			msg := models.ChatMessage{
				CustomOrderID: order.ID,
				SenderID:      user.ID,
				SenderRole:    user.Role,
				Message:       r.Message,
				Type:          models.MessageTypeMessage,
			}
			if err := db.Create(&msg).Error; err != nil {
				continue
			}
			msg.SenderName = user.Username
			afterMessageCreated(c.Request.Context(), db, cache, order, msg, user)
		}
	}
}
