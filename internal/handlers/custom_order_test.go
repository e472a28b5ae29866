package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"pinst/internal/models"
)

func TestGetCustomOrderAccess(t *testing.T) {
	db, r, _ := setupTest(t)
	ownerToken := registerUser(t, r, "coowner@test.dev", "coowner")
	strangerToken := registerUser(t, r, "costranger@test.dev", "costranger")
	adminToken := registerUser(t, r, "coadmin@test.dev", "coadmin")
	promoteAdmin(t, db, "coadmin@test.dev")
	setBalance(t, db, "coowner@test.dev", "1000")
	p := createTestProduct(t, db, "Custom Dashboard", models.ProductTypeCustom, "300")

	co := checkoutCustom(t, db, r, ownerToken, p, "Dark theme, websocket feed")

	// владелец получает заказ с вложенными данными
	w := doJSON(r, "GET", "/custom-orders/"+co.ID, ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner get status %d", w.Code)
	}
	var full models.CustomOrderFull
	if err := json.Unmarshal(w.Body.Bytes(), &full); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if full.Product.ID != p.ID {
		t.Fatalf("product %+v", full.Product)
	}
	if len(full.ChatMessages) != 1 {
		t.Fatalf("messages %d", len(full.ChatMessages))
	}
	if len(full.AdditionalPaymentRequests) != 0 {
		t.Fatalf("unexpected payment requests %d", len(full.AdditionalPaymentRequests))
	}

	// администратор тоже
	w = doJSON(r, "GET", "/custom-orders/"+co.ID, adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin get status %d", w.Code)
	}

	// чужой пользователь — 403
	w = doJSON(r, "GET", "/custom-orders/"+co.ID, strangerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger get status %d", w.Code)
	}

	// несуществующий — 404
	w = doJSON(r, "GET", "/custom-orders/missing", ownerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing get status %d", w.Code)
	}
}

func TestListCustomOrders(t *testing.T) {
	db, r, _ := setupTest(t)
	ownerToken := registerUser(t, r, "colist@test.dev", "colist")
	otherToken := registerUser(t, r, "colist2@test.dev", "colist2")
	adminToken := registerUser(t, r, "colistadm@test.dev", "colistadm")
	promoteAdmin(t, db, "colistadm@test.dev")
	setBalance(t, db, "colist@test.dev", "1000")
	p := createTestProduct(t, db, "Custom Indicator", models.ProductTypeCustom, "200")

	co := checkoutCustom(t, db, r, ownerToken, p, "")

	w := doJSON(r, "GET", "/custom-orders", ownerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("owner list status %d", w.Code)
	}
	var list []models.CustomOrder
	json.Unmarshal(w.Body.Bytes(), &list)
	found := false
	for _, o := range list {
		if o.ID == co.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("owner does not see own custom order")
	}

	// чужой пользователь не видит заказ в своём списке
	w = doJSON(r, "GET", "/custom-orders", otherToken, nil)
	list = nil
	json.Unmarshal(w.Body.Bytes(), &list)
	for _, o := range list {
		if o.ID == co.ID {
			t.Fatalf("foreign custom order leaked")
		}
	}

	// администратор видит все
	w = doJSON(r, "GET", "/custom-orders", adminToken, nil)
	list = nil
	json.Unmarshal(w.Body.Bytes(), &list)
	found = false
	for _, o := range list {
		if o.ID == co.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("admin does not see custom order")
	}
}
