package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"pinst/internal/models"
)

func TestBalanceTopup(t *testing.T) {
	_, r, _ := setupTest(t)
	token := registerUser(t, r, "topup@test.dev", "topup")

	w := doJSON(r, "GET", "/balance", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balance status %d", w.Code)
	}
	var bal BalanceResponse
	json.Unmarshal(w.Body.Bytes(), &bal)
	if bal.Balance != "0" {
		t.Fatalf("balance %s", bal.Balance)
	}

	// пополнение зачисляется сразу
	w = doJSON(r, "POST", "/balance/topup", token, TopupRequest{Amount: "250.75"})
	if w.Code != http.StatusOK {
		t.Fatalf("topup status %d: %s", w.Code, w.Body.String())
	}
	var tx models.Transaction
	json.Unmarshal(w.Body.Bytes(), &tx)
	if tx.Type != models.TransactionTypeTopup || tx.Status != models.TransactionStatusCompleted {
		t.Fatalf("transaction %+v", tx)
	}

	w = doJSON(r, "GET", "/balance", token, nil)
	json.Unmarshal(w.Body.Bytes(), &bal)
	if bal.Balance != "250.75" {
		t.Fatalf("balance after topup %s", bal.Balance)
	}

	// неположительные и кривые суммы отклоняются
	for _, amount := range []string{"0", "-10", "ten"} {
		w = doJSON(r, "POST", "/balance/topup", token, TopupRequest{Amount: amount})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("topup %q status %d", amount, w.Code)
		}
	}
}

func TestListTransactions(t *testing.T) {
	_, r, _ := setupTest(t)
	token := registerUser(t, r, "txlist@test.dev", "txlist")
	otherToken := registerUser(t, r, "txother@test.dev", "txother")

	doJSON(r, "POST", "/balance/topup", token, TopupRequest{Amount: "10"})
	doJSON(r, "POST", "/balance/topup", token, TopupRequest{Amount: "20"})

	w := doJSON(r, "GET", "/transactions", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}
	var txs []models.Transaction
	json.Unmarshal(w.Body.Bytes(), &txs)
	if len(txs) != 2 {
		t.Fatalf("transactions %d", len(txs))
	}

	// чужие транзакции не видны
	w = doJSON(r, "GET", "/transactions", otherToken, nil)
	txs = nil
	json.Unmarshal(w.Body.Bytes(), &txs)
	if len(txs) != 0 {
		t.Fatalf("foreign transactions %d", len(txs))
	}
}
