package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"pinst/internal/customorderchat"
	"pinst/internal/models"
)

func TestCustomOrderChatWS(t *testing.T) {
	db, r, _ := setupTest(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ownerToken := registerUser(t, r, "wsowner@test.dev", "wsowner")
	adminToken := registerUser(t, r, "wsadmin@test.dev", "wsadmin")
	hackerToken := registerUser(t, r, "wshacker@test.dev", "wshacker")
	promoteAdmin(t, db, "wsadmin@test.dev")
	setBalance(t, db, "wsowner@test.dev", "1000")
	p := createTestProduct(t, db, "Custom Feed", models.ProductTypeCustom, "100")
	co := checkoutCustom(t, db, r, ownerToken, p, "Live market feed")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/custom-orders/" + co.ID + "/chat"

	// посторонний не подключается
	header := http.Header{"Authorization": {"Bearer " + hackerToken}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil || resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected forbidden, got %v %v", err, resp)
	}

	// администратор слушает чат
	header = http.Header{"Authorization": {"Bearer " + adminToken}}
	adminConn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("admin dial: %v", err)
	}
	defer adminConn.Close()

	// владелец подключается и пишет
	header = http.Header{"Authorization": {"Bearer " + ownerToken}}
	ownerConn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("owner dial: %v", err)
	}
	defer ownerConn.Close()
	if err := ownerConn.WriteJSON(CustomOrderMessageRequest{Message: "any ETA?"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// обе стороны получают событие
	var ev customorderchat.Event
	if err := adminConn.ReadJSON(&ev); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if ev.Message.Message != "any ETA?" || ev.Message.SenderName != "wsowner" {
		t.Fatalf("unexpected event %+v", ev)
	}
	var echo customorderchat.Event
	if err := ownerConn.ReadJSON(&echo); err != nil {
		t.Fatalf("owner echo read: %v", err)
	}

	// сообщение легло в БД
	var dbMsg models.ChatMessage
	if err := db.Where("id = ?", ev.Message.ID).First(&dbMsg).Error; err != nil {
		t.Fatalf("db message: %v", err)
	}
	if dbMsg.Type != models.MessageTypeMessage {
		t.Fatalf("message type %s", dbMsg.Type)
	}
}
