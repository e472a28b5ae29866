// @title PInst API
// @version 1.0
// @description API магазина лицензионного ПО и кастомной разработки
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pinst/config"
	"pinst/internal/db"
	"pinst/internal/handlers"
	"pinst/internal/services"
	storage "pinst/internal/services/storage"

	docs "pinst/docs"
)

func main() {
	// 1. Загружаем конфиг из .env / окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// 1.1 Определяем режим запуска (dev/prod)
	env := os.Getenv("APP_ENV")
	if env == "prod" || env == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 2. Открываем GORM-подключение
	gormDB, err := db.NewDB(cfg.DSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	// 2.1 Кеш истории чатов (опционально)
	var chatCache *services.ChatCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		chatCache = services.NewChatCache(rdb, 100)
	}

	// 2.2 Хранилище картинок товаров
	st, err := storage.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	docs.SwaggerInfo.BasePath = "/"

	// 3. Создаём Gin-роутер и регистрируем /health
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.GET("/health", handlers.Health(gormDB))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/auth")
	auth.POST("/register", handlers.Register(gormDB, cfg.TokenTypeTTL))
	auth.POST("/login", handlers.Login(gormDB, cfg.TokenTypeTTL))
	auth.POST("/refresh", handlers.Refresh(gormDB, cfg.TokenTypeTTL))
	auth.Use(handlers.AuthMiddleware(gormDB))
	auth.GET("/profile", handlers.Profile(gormDB))
	auth.POST("/logout", handlers.Logout(gormDB))

	// каталог открыт без авторизации
	r.GET("/products", handlers.ListProducts(gormDB))
	r.GET("/products/:id", handlers.GetProduct(gormDB))

	api := r.Group("/")
	api.Use(handlers.AuthMiddleware(gormDB))
	api.POST("/orders", handlers.CreateOrder(gormDB))
	api.GET("/orders", handlers.ListOrders(gormDB))
	api.GET("/orders/:id", handlers.GetOrder(gormDB))
	api.GET("/licenses", handlers.ListLicenses(gormDB))

	api.GET("/custom-orders", handlers.ListCustomOrders(gormDB))
	api.GET("/custom-orders/:id", handlers.GetCustomOrder(gormDB))
	api.PATCH("/custom-orders/:id", handlers.UpdateCustomOrderStatus(gormDB, chatCache))
	api.GET("/custom-orders/:id/messages", handlers.ListCustomOrderMessages(gormDB))
	api.POST("/custom-orders/:id/messages", handlers.CreateCustomOrderMessage(gormDB, chatCache))
	api.POST("/custom-orders/:id/payment-requests/:reqId/pay", handlers.PayPaymentRequest(gormDB, chatCache))
	api.POST("/custom-orders/:id/payment-requests/:reqId/cancel", handlers.CancelPaymentRequest(gormDB, chatCache))

	api.GET("/balance", handlers.GetBalance(gormDB))
	api.POST("/balance/topup", handlers.TopupBalance(gormDB))
	api.GET("/transactions", handlers.ListTransactions(gormDB))

	api.GET("/notifications", handlers.ListNotifications(gormDB))
	api.POST("/notifications/:id/read", handlers.ReadNotification(gormDB))
	api.POST("/notifications/read-all", handlers.ReadAllNotifications(gormDB))

	api.GET("/ws/custom-orders/:id/chat", handlers.CustomOrderChatWS(gormDB, chatCache))
	api.GET("/ws/notifications", handlers.NotificationsWS(gormDB))

	admin := r.Group("/admin")
	admin.Use(handlers.AuthMiddleware(gormDB), handlers.RequireAdmin())
	admin.POST("/products", handlers.CreateProduct(gormDB, st))
	admin.PUT("/products/:id", handlers.UpdateProduct(gormDB))
	admin.DELETE("/products/:id", handlers.DeleteProduct(gormDB))
	admin.GET("/stats", handlers.AdminStats(gormDB))
	admin.GET("/promo-codes", handlers.ListPromoCodes(gormDB))
	admin.POST("/promo-codes", handlers.CreatePromoCode(gormDB))

	// 4. Запускаем сервер
	addr := ":" + cfg.Port
	log.Printf("listening on %s …", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
