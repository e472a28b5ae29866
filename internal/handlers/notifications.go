package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pinst/internal/models"
	"pinst/internal/notifications"
)

// ListNotifications godoc
// @Summary Список уведомлений пользователя
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "лимит"
// @Param offset query int false "смещение"
// @Success 200 {array} models.Notification
// @Router /notifications [get]
func ListNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		limit, offset := parsePagination(c)
		var ns []models.Notification
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at desc").
			Limit(limit).Offset(offset).Find(&ns).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, ns)
	}
}

// ReadNotification godoc
// @Summary Отметить уведомление прочитанным
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID уведомления"
// @Success 200 {object} models.Notification
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func ReadNotification(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		id := c.Param("id")
		var n models.Notification
		if err := db.Where("id = ? AND user_id = ?", id, user.ID).First(&n).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid notification"})
			return
		}
		now := time.Now()
		if err := db.Model(&n).Update("read_at", now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		n.ReadAt = &now
		c.JSON(http.StatusOK, n)
	}
}

// ReadAllNotifications godoc
// @Summary Отметить все уведомления прочитанными
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /notifications/read-all [post]
func ReadAllNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		now := time.Now()
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND read_at IS NULL", user.ID).
			Update("read_at", now).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
	}
}

// NotificationsWS godoc
// @Summary Websocket уведомлений
// @Description Подключает пользователя к потоку уведомлений. После подключения сервер отправляет непрочитанные уведомления.
// @Tags notifications
// @Security BearerAuth
// @Success 101 {object} models.Notification "Switching Protocols"
// @Failure 401 {object} ErrorResponse
// @Router /ws/notifications [get]
func NotificationsWS(db *gorm.DB) gin.HandlerFunc {
	notifications.SetDB(db)
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		notifications.AddClient(user.ID, conn)
		defer func() {
			notifications.RemoveClient(user.ID, conn)
			conn.Close()
		}()

		var list []models.Notification
		if err := db.Where("user_id = ? AND read_at IS NULL AND sent_at IS NULL", user.ID).Find(&list).Error; err == nil {
			for _, n := range list {
				if err := notifications.Send(conn, n); err != nil {
					return
				}
			}
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}

// notifyUser создаёт уведомление и рассылает его по вебсокету.
func notifyUser(db *gorm.DB, userID, typ string, payload []byte, linkTo string) {
	n := models.Notification{UserID: userID, Type: typ, Payload: payload, LinkTo: linkTo}
	if err := db.Create(&n).Error; err == nil {
		notifications.Broadcast(userID, n)
	}
}

// notifyAdmins создаёт уведомление каждому администратору.
func notifyAdmins(db *gorm.DB, typ string, payload []byte, linkTo string) {
	var admins []models.User
	if err := db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error; err != nil {
		return
	}
	for _, a := range admins {
		notifyUser(db, a.ID, typ, payload, linkTo)
	}
}
