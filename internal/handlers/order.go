package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pinst/internal/customorderchat"
	"pinst/internal/models"
	"pinst/internal/utils"
)

type CheckoutItem struct {
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	CustomSpecs string `json:"customSpecs"`
}

type CheckoutRequest struct {
	Items     []CheckoutItem `json:"items"`
	PromoCode string         `json:"promoCode"`
}

// CreateOrder godoc
// @Summary Оформить заказ
// @Description Списывает стоимость с баланса. Лицензионные товары доставляются
// мгновенно (ключ + ссылка), кастомные порождают кастомный заказ с чатом,
// и заказ остаётся в статусе processing до завершения разработки.
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body CheckoutRequest true "корзина"
// @Success 201 {object} models.Order
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /orders [post]
func CreateOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		var r CheckoutRequest
		if err := c.BindJSON(&r); err != nil || len(r.Items) == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}

		// резолвим товары по каталогу — цене из запроса не доверяем
		items := make([]models.OrderItem, 0, len(r.Items))
		products := make(map[string]models.Product, len(r.Items))
		subtotal := decimal.Zero
		for _, it := range r.Items {
			if it.Quantity <= 0 {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid quantity"})
				return
			}
			var p models.Product
			if err := db.Where("id = ?", it.ProductID).First(&p).Error; err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product"})
				return
			}
			if !p.InStock {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "product out of stock"})
				return
			}
			products[p.ID] = p
			items = append(items, models.OrderItem{
				ProductID:   p.ID,
				Name:        p.Name,
				Type:        p.Type,
				Price:       p.Price,
				Quantity:    it.Quantity,
				CustomSpecs: it.CustomSpecs,
			})
			subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		discount := decimal.Zero
		var promo *models.PromoCode
		if r.PromoCode != "" {
			var pc models.PromoCode
			if err := db.Where("code = ?", r.PromoCode).First(&pc).Error; err != nil || !pc.Usable(time.Now()) {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid promo code"})
				return
			}
			discount = pc.DiscountFor(subtotal)
			promo = &pc
		}
		total := subtotal.Sub(discount)

		if user.Balance.LessThan(total) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "insufficient balance"})
			return
		}

		itemsJSON, err := json.Marshal(items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "encode error"})
			return
		}

		var order models.Order
		var spawned []models.CustomOrder
		var seedMsgs []models.ChatMessage
		err = db.Transaction(func(tx *gorm.DB) error {
			order = models.Order{
				UserID:      user.ID,
				Items:       datatypes.JSON(itemsJSON),
				TotalAmount: total,
				Discount:    discount,
				Status:      models.OrderStatusPending,
			}
			if promo != nil {
				order.PromoCode = &promo.Code
				if err := tx.Model(promo).Update("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
					return err
				}
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			hasCustom := false
			for _, item := range items {
				product := products[item.ProductID]
				switch product.Type {
				case models.ProductTypeLicense:
					key, err := utils.GenerateLicenseKey(product.Name)
					if err != nil {
						return err
					}
					downloadURL := "https://cdn.example.com/downloads/" + product.ID
					if product.DownloadURL != nil {
						downloadURL = *product.DownloadURL
					}
					lic := models.License{
						OrderID:     order.ID,
						UserID:      user.ID,
						ProductID:   product.ID,
						LicenseKey:  key,
						DownloadURL: downloadURL,
						IsActive:    true,
					}
					var expires *string
					// lifetime-лицензии не имеют срока действия
					if !strings.Contains(product.Name, "Lifetime") {
						t := time.Now().Add(365 * 24 * time.Hour)
						lic.ExpiresAt = &t
						s := t.Format(time.RFC3339)
						expires = &s
					}
					if err := tx.Create(&lic).Error; err != nil {
						return err
					}
					di, err := json.Marshal(models.DeliveryInfo{
						LicenseKey:  lic.LicenseKey,
						DownloadURL: lic.DownloadURL,
						ExpiresAt:   expires,
					})
					if err != nil {
						return err
					}
					order.DeliveryInfo = datatypes.JSON(di)
				case models.ProductTypeCustom:
					hasCustom = true
					specs := item.CustomSpecs
					if specs == "" {
						specs = "No specifications provided"
					}
					co := models.CustomOrder{
						OrderID:        order.ID,
						UserID:         user.ID,
						ProductID:      product.ID,
						Status:         models.CustomOrderStatusChat,
						Specifications: specs,
					}
					if err := tx.Create(&co).Error; err != nil {
						return err
					}
					seedSpecs := item.CustomSpecs
					if seedSpecs == "" {
						seedSpecs = "Please contact me to discuss requirements."
					}
					seed := models.ChatMessage{
						CustomOrderID: co.ID,
						SenderID:      user.ID,
						SenderRole:    models.UserRoleUser,
						Message:       fmt.Sprintf("I would like to order: %s\n\nSpecifications: %s", product.Name, seedSpecs),
						Type:          models.MessageTypeMessage,
					}
					if err := tx.Create(&seed).Error; err != nil {
						return err
					}
					spawned = append(spawned, co)
					seedMsgs = append(seedMsgs, seed)
				}
			}

			now := time.Now()
			if hasCustom {
				order.Status = models.OrderStatusProcessing
			} else {
				order.Status = models.OrderStatusCompleted
				order.CompletedAt = &now
			}
			if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]any{
				"status":        order.Status,
				"delivery_info": order.DeliveryInfo,
				"completed_at":  order.CompletedAt,
			}).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("balance", gorm.Expr("balance - ?", total)).Error; err != nil {
				return err
			}
			oid := order.ID
			txRec := models.Transaction{
				UserID:      user.ID,
				Type:        models.TransactionTypePurchase,
				Amount:      total,
				Description: fmt.Sprintf("Order %s", order.ID),
				OrderID:     &oid,
				Status:      models.TransactionStatusCompleted,
			}
			return tx.Create(&txRec).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}

		for i, co := range spawned {
			customorderchat.Broadcast(co.ID, seedMsgs[i])
			if payload, err := json.Marshal(map[string]string{"customOrderId": co.ID, "orderId": order.ID}); err == nil {
				notifyAdmins(db, "customorder.created", payload, "/custom-orders/"+co.ID)
			}
		}

		c.JSON(http.StatusCreated, order)
	}
}

// ListOrders godoc
// @Summary Список заказов
// @Description Пользователь видит свои заказы, администратор — все (фильтры userId, status).
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param userId query string false "только для администратора"
// @Param status query string false "фильтр по статусу"
// @Success 200 {array} models.Order
// @Router /orders [get]
func ListOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		q := db.Model(&models.Order{})
		if user.IsAdmin() {
			if uid := c.Query("userId"); uid != "" {
				q = q.Where("user_id = ?", uid)
			}
		} else {
			q = q.Where("user_id = ?", user.ID)
		}
		if status := c.Query("status"); status != "" && status != "all" {
			q = q.Where("status = ?", status)
		}
		limit, offset := parsePagination(c)
		var orders []models.Order
		if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrder godoc
// @Summary Заказ по ID
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID заказа"
// @Success 200 {object} models.Order
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		var order models.Order
		if err := db.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "invalid order"})
			return
		}
		if !user.IsAdmin() && order.UserID != user.ID {
			c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// ListLicenses godoc
// @Summary Лицензии пользователя
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.License
// @Router /licenses [get]
func ListLicenses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		var licenses []models.License
		if err := db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&licenses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, licenses)
	}
}
