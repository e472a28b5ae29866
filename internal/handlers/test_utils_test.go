package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "pinst/internal/db"
	"pinst/internal/models"
	storage "pinst/internal/services/storage"
)

// setupTest создаёт in-memory БД и маршруты для тестов.
func setupTest(t *testing.T) (*gorm.DB, *gin.Engine, map[string]time.Duration) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := appdb.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ttl := map[string]time.Duration{"access": time.Minute, "refresh": time.Hour}

	st, err := storage.New("", "", "", "", false)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	r := gin.Default()
	r.GET("/health", Health(db))

	auth := r.Group("/auth")
	auth.POST("/register", Register(db, ttl))
	auth.POST("/login", Login(db, ttl))
	auth.POST("/refresh", Refresh(db, ttl))
	auth.Use(AuthMiddleware(db))
	auth.GET("/profile", Profile(db))
	auth.POST("/logout", Logout(db))

	r.GET("/products", ListProducts(db))
	r.GET("/products/:id", GetProduct(db))

	api := r.Group("/")
	api.Use(AuthMiddleware(db))
	api.POST("/orders", CreateOrder(db))
	api.GET("/orders", ListOrders(db))
	api.GET("/orders/:id", GetOrder(db))
	api.GET("/licenses", ListLicenses(db))
	api.GET("/custom-orders", ListCustomOrders(db))
	api.GET("/custom-orders/:id", GetCustomOrder(db))
	api.PATCH("/custom-orders/:id", UpdateCustomOrderStatus(db, nil))
	api.GET("/custom-orders/:id/messages", ListCustomOrderMessages(db))
	api.POST("/custom-orders/:id/messages", CreateCustomOrderMessage(db, nil))
	api.POST("/custom-orders/:id/payment-requests/:reqId/pay", PayPaymentRequest(db, nil))
	api.POST("/custom-orders/:id/payment-requests/:reqId/cancel", CancelPaymentRequest(db, nil))
	api.GET("/balance", GetBalance(db))
	api.POST("/balance/topup", TopupBalance(db))
	api.GET("/transactions", ListTransactions(db))
	api.GET("/notifications", ListNotifications(db))
	api.POST("/notifications/:id/read", ReadNotification(db))
	api.POST("/notifications/read-all", ReadAllNotifications(db))
	api.GET("/ws/custom-orders/:id/chat", CustomOrderChatWS(db, nil))
	api.GET("/ws/notifications", NotificationsWS(db))

	admin := r.Group("/admin")
	admin.Use(AuthMiddleware(db), RequireAdmin())
	admin.POST("/products", CreateProduct(db, st))
	admin.PUT("/products/:id", UpdateProduct(db))
	admin.DELETE("/products/:id", DeleteProduct(db))
	admin.GET("/stats", AdminStats(db))
	admin.GET("/promo-codes", ListPromoCodes(db))
	admin.POST("/promo-codes", CreatePromoCode(db))

	return db, r, ttl
}

// registerUser регистрирует пользователя и возвращает access-токен.
func registerUser(t *testing.T, r *gin.Engine, email, username string) string {
	t.Helper()
	body, _ := json.Marshal(RegisterRequest{
		Email:           email,
		Username:        username,
		Password:        "pass",
		PasswordConfirm: "pass",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("register %s status %d: %s", email, w.Code, w.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("register parse: %v", err)
	}
	return resp.AccessToken
}

// promoteAdmin назначает пользователя администратором напрямую в БД.
func promoteAdmin(t *testing.T, db *gorm.DB, email string) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("email = ?", email).
		Update("role", models.UserRoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
}

// setBalance выставляет баланс пользователя напрямую в БД.
func setBalance(t *testing.T, db *gorm.DB, email, amount string) {
	t.Helper()
	v, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad amount %q: %v", amount, err)
	}
	if err := db.Model(&models.User{}).Where("email = ?", email).
		Update("balance", v).Error; err != nil {
		t.Fatalf("set balance: %v", err)
	}
}

// createTestProduct кладёт товар в каталог напрямую в БД.
func createTestProduct(t *testing.T, db *gorm.DB, name string, typ models.ProductType, price string) models.Product {
	t.Helper()
	v, err := decimal.NewFromString(price)
	if err != nil {
		t.Fatalf("bad price %q: %v", price, err)
	}
	p := models.Product{
		Name:     name,
		Price:    v,
		Type:     typ,
		Category: "test",
		InStock:  true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// doJSON выполняет запрос с JSON-телом и bearer-токеном.
func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// checkoutCustom оформляет заказ кастомного товара и возвращает кастомный заказ.
func checkoutCustom(t *testing.T, db *gorm.DB, r *gin.Engine, token string, product models.Product, specs string) models.CustomOrder {
	t.Helper()
	w := doJSON(r, "POST", "/orders", token, CheckoutRequest{
		Items: []CheckoutItem{{ProductID: product.ID, Quantity: 1, CustomSpecs: specs}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout status %d: %s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("checkout parse: %v", err)
	}
	var co models.CustomOrder
	if err := db.Where("order_id = ?", order.ID).First(&co).Error; err != nil {
		t.Fatalf("custom order lookup: %v", err)
	}
	return co
}
