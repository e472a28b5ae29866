package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"pinst/internal/models"
)

func TestUpdateCustomOrderStatusAdminOnly(t *testing.T) {
	db, r, _ := setupTest(t)
	ownerToken := registerUser(t, r, "stowner@test.dev", "stowner")
	setBalance(t, db, "stowner@test.dev", "1000")
	p := createTestProduct(t, db, "Custom Parser", models.ProductTypeCustom, "250")
	co := checkoutCustom(t, db, r, ownerToken, p, "Parse CSV feeds")

	// владелец статус менять не может
	w := doJSON(r, "PATCH", "/custom-orders/"+co.ID, ownerToken, UpdateCustomOrderRequest{
		Status: "specs_approved",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("owner patch status %d", w.Code)
	}
	var stored models.CustomOrder
	db.Where("id = ?", co.ID).First(&stored)
	if stored.Status != models.CustomOrderStatusChat {
		t.Fatalf("status changed to %s", stored.Status)
	}
}

func TestUpdateCustomOrderStatusFlow(t *testing.T) {
	db, r, _ := setupTest(t)
	ownerToken := registerUser(t, r, "flowowner@test.dev", "flowowner")
	adminToken := registerUser(t, r, "flowadmin@test.dev", "flowadmin")
	promoteAdmin(t, db, "flowadmin@test.dev")
	setBalance(t, db, "flowowner@test.dev", "1000")
	p := createTestProduct(t, db, "Custom Exporter", models.ProductTypeCustom, "350")
	co := checkoutCustom(t, db, r, ownerToken, p, "Export to XLSX")

	// перескочить через шаг нельзя
	w := doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{
		Status: "completed",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("skip transition status %d", w.Code)
	}
	// назад тоже нельзя
	w = doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{
		Status: "chat",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("backward transition status %d", w.Code)
	}
	// неизвестный статус отклоняется
	w = doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{
		Status: "shipped",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status %d", w.Code)
	}

	// chat -> specs_approved
	w = doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{
		Status: "specs_approved",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("approve status %d: %s", w.Code, w.Body.String())
	}
	var resp CustomOrderUpdatedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.CustomOrder.Status != models.CustomOrderStatusSpecsApproved {
		t.Fatalf("status %s", resp.CustomOrder.Status)
	}
	if resp.Message.Type != models.MessageTypeSystem || resp.Message.SenderID != models.SystemSenderID {
		t.Fatalf("system message %+v", resp.Message)
	}
	if resp.Message.Message != "Order status updated to: specs_approved" {
		t.Fatalf("message text %q", resp.Message.Message)
	}

	// specs_approved -> in_development
	w = doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{
		Status: "in_development",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("develop status %d", w.Code)
	}

	// in_development -> completed с completionInfo
	w = doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{
		Status:         "completed",
		CompletionInfo: "Download: https://cdn.example.com/build.zip <script>alert(1)</script>",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete status %d: %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.CustomOrder.Status != models.CustomOrderStatusCompleted {
		t.Fatalf("status %s", resp.CustomOrder.Status)
	}
	if resp.CustomOrder.CompletedAt == nil {
		t.Fatalf("completedAt not set")
	}
	if !strings.HasSuffix(resp.Message.Message, ". Project completed!") {
		t.Fatalf("message text %q", resp.Message.Message)
	}
	// разметка вычищена перед сохранением
	if resp.CustomOrder.CompletionInfo == nil ||
		strings.Contains(*resp.CustomOrder.CompletionInfo, "<script>") {
		t.Fatalf("completion info %v", resp.CustomOrder.CompletionInfo)
	}

	// completed — терминальный статус
	for _, next := range []string{"chat", "specs_approved", "in_development", "completed"} {
		w = doJSON(r, "PATCH", "/custom-orders/"+co.ID, adminToken, UpdateCustomOrderRequest{Status: next})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("transition from completed to %s status %d", next, w.Code)
		}
	}

	// каждая смена статуса оставила системное сообщение
	var sysCount int64
	db.Model(&models.ChatMessage{}).
		Where("custom_order_id = ? AND type = ?", co.ID, models.MessageTypeSystem).
		Count(&sysCount)
	if sysCount != 3 {
		t.Fatalf("system messages %d", sysCount)
	}

	// заказ недоступного ID
	w = doJSON(r, "PATCH", "/custom-orders/missing", adminToken, UpdateCustomOrderRequest{Status: "specs_approved"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing patch status %d", w.Code)
	}
}
