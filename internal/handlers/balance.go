package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pinst/internal/models"
)

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type TopupRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// GetBalance godoc
// @Summary Баланс пользователя
// @Tags balance
// @Security BearerAuth
// @Produce json
// @Success 200 {object} BalanceResponse
// @Router /balance [get]
func GetBalance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		c.JSON(http.StatusOK, BalanceResponse{Balance: user.Balance.String()})
	}
}

// TopupBalance godoc
// @Summary Пополнить баланс
// @Description Пополнение через эмулированного платёжного провайдера:
// транзакция сразу подтверждается и баланс зачисляется.
// @Tags balance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body TopupRequest true "сумма"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Router /balance/topup [post]
func TopupBalance(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		var r TopupRequest
		if err := c.BindJSON(&r); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil || !amount.IsPositive() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
			return
		}
		currency := r.Currency
		if currency == "" {
			currency = "USD"
		}
		var txRec models.Transaction
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
				Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
				return err
			}
			txRec = models.Transaction{
				UserID:      user.ID,
				Type:        models.TransactionTypeTopup,
				Amount:      amount,
				Description: fmt.Sprintf("Balance top-up (%s)", currency),
				Status:      models.TransactionStatusCompleted,
			}
			return tx.Create(&txRec).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, txRec)
	}
}

// ListTransactions godoc
// @Summary История транзакций пользователя
// @Tags balance
// @Security BearerAuth
// @Produce json
// @Param limit query int false "лимит"
// @Param offset query int false "смещение"
// @Success 200 {array} models.Transaction
// @Router /transactions [get]
func ListTransactions(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "no user"})
			return
		}
		limit, offset := parsePagination(c)
		var txs []models.Transaction
		if err := db.Where("user_id = ?", user.ID).
			Order("created_at desc").
			Limit(limit).Offset(offset).Find(&txs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "db error"})
			return
		}
		c.JSON(http.StatusOK, txs)
	}
}
