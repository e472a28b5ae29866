package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"pinst/internal/models"
)

// Общие структуры запросов и ответов для Swagger и тестов

type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ProfileResponse struct {
	ID       string          `json:"id"`
	Email    string          `json:"email"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	Balance  string          `json:"balance"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// issueTokens создаёт пару access/refresh токенов для пользователя.
func issueTokens(db *gorm.DB, userID string, ttl map[string]time.Duration) (*TokenResponse, error) {
	var resp TokenResponse
	for _, typ := range []string{"access", "refresh"} {
		raw, err := generateToken()
		if err != nil {
			return nil, err
		}
		tok := models.Token{
			UserID:    userID,
			Token:     raw,
			Type:      typ,
			ExpiresAt: time.Now().Add(ttl[typ]),
		}
		if err := db.Create(&tok).Error; err != nil {
			return nil, err
		}
		if typ == "access" {
			resp.AccessToken = raw
		} else {
			resp.RefreshToken = raw
		}
	}
	return &resp, nil
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Создаёт нового пользователя с уникальными email и именем
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RegisterRequest true "данные регистрации"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func Register(db *gorm.DB, ttl map[string]time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r RegisterRequest
		if err := c.BindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		r.Email = strings.TrimSpace(strings.ToLower(r.Email))
		if r.Email == "" || r.Username == "" || r.Password == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing fields"})
			return
		}
		if r.Password != r.PasswordConfirm {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "passwords do not match"})
			return
		}
		var count int64
		db.Model(&models.User{}).Where("email = ? OR username = ?", r.Email, r.Username).Count(&count)
		if count > 0 {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "user exists"})
			return
		}
		pwdHash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "hash error"})
			return
		}
		user := models.User{
			Email:    r.Email,
			Username: r.Username,
			Password: string(pwdHash),
			Role:     models.UserRoleUser,
		}
		if err := db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		resp, err := issueTokens(db, user.ID, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "token error"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Login godoc
// @Summary Вход пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body LoginRequest true "учётные данные"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func Login(db *gorm.DB, ttl map[string]time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r LoginRequest
		if err := c.BindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		var user models.User
		if err := db.Where("email = ?", strings.TrimSpace(strings.ToLower(r.Email))).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(r.Password)) != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		resp, err := issueTokens(db, user.ID, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "token error"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Refresh godoc
// @Summary Обновление пары токенов
// @Tags auth
// @Accept json
// @Produce json
// @Param input body RefreshRequest true "refresh токен"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func Refresh(db *gorm.DB, ttl map[string]time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r RefreshRequest
		if err := c.BindJSON(&r); err != nil || r.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		var token models.Token
		if err := db.Where("token = ? AND type = ?", r.RefreshToken, "refresh").First(&token).Error; err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}
		if token.ExpiresAt.Before(time.Now()) {
			db.Delete(&token)
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "token expired"})
			return
		}
		// старая пара токенов отзывается
		db.Where("user_id = ?", token.UserID).Delete(&models.Token{})
		resp, err := issueTokens(db, token.UserID, ttl)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "token error"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/profile [get]
func Profile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		c.JSON(http.StatusOK, ProfileResponse{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Role:     user.Role,
			Balance:  user.Balance.String(),
		})
	}
}

// Logout godoc
// @Summary Выход пользователя
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/logout [post]
func Logout(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		db.Where("user_id = ?", user.ID).Delete(&models.Token{})
		c.JSON(http.StatusOK, StatusResponse{Status: "logged out"})
	}
}

// AuthMiddleware резолвит bearer-токен в пользователя и кладёт его в контекст.
// Роль проверяется здесь один раз, обработчики дальше читают готового актора.
func AuthMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}
		tokenStr := parts[1]
		var token models.Token
		if err := db.Where("token = ? AND type = ?", tokenStr, "access").First(&token).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if token.ExpiresAt.Before(time.Now()) {
			db.Delete(&token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
			return
		}
		var user models.User
		if err := db.Where("id = ?", token.UserID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("user", &user)
		c.Next()
	}
}

// RequireAdmin пропускает дальше только администраторов.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// canAccessCustomOrder — единый предикат доступа к кастомному заказу:
// администратор или владелец.
func canAccessCustomOrder(user *models.User, order *models.CustomOrder) bool {
	return user.IsAdmin() || user.ID == order.UserID
}
