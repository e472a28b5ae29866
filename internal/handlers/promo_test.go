package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"pinst/internal/models"
)

func TestCreatePromoCode(t *testing.T) {
	db, r, _ := setupTest(t)
	userToken := registerUser(t, r, "promouser@test.dev", "promouser")
	adminToken := registerUser(t, r, "promoadmin@test.dev", "promoadmin")
	promoteAdmin(t, db, "promoadmin@test.dev")

	body := PromoCodeRequest{
		Code:      "SPRING20",
		Type:      "percentage",
		Value:     "20",
		MaxUses:   100,
		ExpiresAt: time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	}

	w := doJSON(r, "POST", "/admin/promo-codes", userToken, body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin create status %d", w.Code)
	}

	w = doJSON(r, "POST", "/admin/promo-codes", adminToken, body)
	if w.Code != http.StatusOK {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	var pc models.PromoCode
	json.Unmarshal(w.Body.Bytes(), &pc)
	if pc.Code != "SPRING20" || pc.Type != models.PromoCodeTypePercentage || !pc.IsActive {
		t.Fatalf("promo code %+v", pc)
	}

	// дубликат кода отклоняется
	w = doJSON(r, "POST", "/admin/promo-codes", adminToken, body)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status %d", w.Code)
	}

	// валидация типа и значения
	for _, bad := range []PromoCodeRequest{
		{Code: "BAD1", Type: "half", Value: "50", MaxUses: 1, ExpiresAt: body.ExpiresAt},
		{Code: "BAD2", Type: "fixed", Value: "-5", MaxUses: 1, ExpiresAt: body.ExpiresAt},
		{Code: "BAD3", Type: "fixed", Value: "5", MaxUses: 0, ExpiresAt: body.ExpiresAt},
		{Code: "BAD4", Type: "fixed", Value: "5", MaxUses: 1, ExpiresAt: "tomorrow"},
	} {
		w = doJSON(r, "POST", "/admin/promo-codes", adminToken, bad)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad promo %+v status %d", bad, w.Code)
		}
	}

	// список доступен администратору
	w = doJSON(r, "GET", "/admin/promo-codes", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}
	var list []models.PromoCode
	json.Unmarshal(w.Body.Bytes(), &list)
	found := false
	for _, c := range list {
		if c.Code == "SPRING20" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created code missing from list")
	}
}
