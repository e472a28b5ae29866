package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pinst/internal/models"
)

func TestCheckoutLicenseProduct(t *testing.T) {
	db, r, _ := setupTest(t)
	token := registerUser(t, r, "buyer1@test.dev", "buyer1")
	setBalance(t, db, "buyer1@test.dev", "200")
	p := createTestProduct(t, db, "Signal Scanner", models.ProductTypeLicense, "49.99")

	w := doJSON(r, "POST", "/orders", token, CheckoutRequest{
		Items: []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout status %d: %s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if order.Status != models.OrderStatusCompleted {
		t.Fatalf("order status %s", order.Status)
	}
	if order.TotalAmount.String() != "49.99" {
		t.Fatalf("total %s", order.TotalAmount)
	}

	// лицензия выдана сразу
	var lic models.License
	if err := db.Where("order_id = ?", order.ID).First(&lic).Error; err != nil {
		t.Fatalf("license lookup: %v", err)
	}
	if !strings.HasPrefix(lic.LicenseKey, "SIGNAL-SCANNER-") {
		t.Fatalf("license key %q", lic.LicenseKey)
	}
	if lic.ExpiresAt == nil || lic.ExpiresAt.Before(time.Now()) {
		t.Fatalf("license expiry %v", lic.ExpiresAt)
	}

	// баланс списан, транзакция записана
	var u models.User
	db.Where("email = ?", "buyer1@test.dev").First(&u)
	if u.Balance.String() != "150.01" {
		t.Fatalf("balance %s", u.Balance)
	}
	var txRec models.Transaction
	if err := db.Where("user_id = ? AND type = ?", u.ID, models.TransactionTypePurchase).First(&txRec).Error; err != nil {
		t.Fatalf("transaction lookup: %v", err)
	}
	if txRec.Amount.String() != "49.99" || txRec.Status != models.TransactionStatusCompleted {
		t.Fatalf("transaction %+v", txRec)
	}
}

func TestCheckoutCustomProduct(t *testing.T) {
	db, r, _ := setupTest(t)
	token := registerUser(t, r, "buyer2@test.dev", "buyer2")
	setBalance(t, db, "buyer2@test.dev", "1000")
	p := createTestProduct(t, db, "Custom Arbitrage Bot", models.ProductTypeCustom, "750")

	co := checkoutCustom(t, db, r, token, p, "Needs Binance and Kraken support")
	if co.Status != models.CustomOrderStatusChat {
		t.Fatalf("custom order status %s", co.Status)
	}
	if co.Specifications != "Needs Binance and Kraken support" {
		t.Fatalf("specs %q", co.Specifications)
	}

	// заказ остаётся в processing до завершения разработки
	var order models.Order
	db.Where("id = ?", co.OrderID).First(&order)
	if order.Status != models.OrderStatusProcessing {
		t.Fatalf("order status %s", order.Status)
	}

	// в чате появилось стартовое сообщение владельца
	var msgs []models.ChatMessage
	db.Where("custom_order_id = ?", co.ID).Find(&msgs)
	if len(msgs) != 1 {
		t.Fatalf("messages %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Message, "I would like to order: Custom Arbitrage Bot") {
		t.Fatalf("seed message %q", msgs[0].Message)
	}
	if !strings.Contains(msgs[0].Message, "Needs Binance and Kraken support") {
		t.Fatalf("seed message %q", msgs[0].Message)
	}
}

func TestCheckoutInsufficientBalance(t *testing.T) {
	db, r, _ := setupTest(t)
	token := registerUser(t, r, "buyer3@test.dev", "buyer3")
	setBalance(t, db, "buyer3@test.dev", "10")
	p := createTestProduct(t, db, "Pricey Tool", models.ProductTypeLicense, "99")

	w := doJSON(r, "POST", "/orders", token, CheckoutRequest{
		Items: []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "insufficient balance" {
		t.Fatalf("error %q", resp.Error)
	}

	// ничего не создано и не списано
	var count int64
	db.Model(&models.Order{}).Where("user_id = (SELECT id FROM users WHERE email = ?)", "buyer3@test.dev").Count(&count)
	if count != 0 {
		t.Fatalf("orders %d", count)
	}
}

func TestCheckoutWithPromoCode(t *testing.T) {
	db, r, _ := setupTest(t)
	token := registerUser(t, r, "buyer4@test.dev", "buyer4")
	setBalance(t, db, "buyer4@test.dev", "100")
	p := createTestProduct(t, db, "Promo Tool", models.ProductTypeLicense, "50")

	pc := models.PromoCode{
		Code:      "TEST10",
		Type:      models.PromoCodeTypePercentage,
		Value:     decimal.NewFromInt(10),
		MaxUses:   5,
		ExpiresAt: time.Now().Add(24 * time.Hour),
		IsActive:  true,
	}
	if err := db.Create(&pc).Error; err != nil {
		t.Fatalf("promo create: %v", err)
	}

	w := doJSON(r, "POST", "/orders", token, CheckoutRequest{
		Items:     []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		PromoCode: "TEST10",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout status %d: %s", w.Code, w.Body.String())
	}
	var order models.Order
	json.Unmarshal(w.Body.Bytes(), &order)
	if order.TotalAmount.String() != "45" || order.Discount.String() != "5" {
		t.Fatalf("total %s discount %s", order.TotalAmount, order.Discount)
	}

	var stored models.PromoCode
	db.Where("code = ?", "TEST10").First(&stored)
	if stored.UsedCount != 1 {
		t.Fatalf("used count %d", stored.UsedCount)
	}

	// неизвестный промокод отклоняется
	w = doJSON(r, "POST", "/orders", token, CheckoutRequest{
		Items:     []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
		PromoCode: "NOPE",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad promo status %d", w.Code)
	}
}

func TestOrderAccess(t *testing.T) {
	db, r, _ := setupTest(t)
	ownerToken := registerUser(t, r, "owner5@test.dev", "owner5")
	strangerToken := registerUser(t, r, "stranger5@test.dev", "stranger5")
	adminToken := registerUser(t, r, "admin5@test.dev", "admin5")
	promoteAdmin(t, db, "admin5@test.dev")
	setBalance(t, db, "owner5@test.dev", "100")
	p := createTestProduct(t, db, "Access Tool", models.ProductTypeLicense, "10")

	w := doJSON(r, "POST", "/orders", ownerToken, CheckoutRequest{
		Items: []CheckoutItem{{ProductID: p.ID, Quantity: 1}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout status %d", w.Code)
	}
	var order models.Order
	json.Unmarshal(w.Body.Bytes(), &order)

	// владелец видит заказ
	w = doJSON(r, "GET", "/orders/"+order.ID, ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner get status %d", w.Code)
	}
	// чужой — нет
	w = doJSON(r, "GET", "/orders/"+order.ID, strangerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger get status %d", w.Code)
	}
	// администратор видит любой
	w = doJSON(r, "GET", "/orders/"+order.ID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin get status %d", w.Code)
	}
	// несуществующий заказ
	w = doJSON(r, "GET", "/orders/missing", ownerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing get status %d", w.Code)
	}

	// в списке чужого пользователя заказа нет
	w = doJSON(r, "GET", "/orders", strangerToken, nil)
	var list []models.Order
	json.Unmarshal(w.Body.Bytes(), &list)
	for _, o := range list {
		if o.ID == order.ID {
			t.Fatalf("stranger sees foreign order")
		}
	}
}
