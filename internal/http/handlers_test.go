package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *auth.JWT) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	svc := services.NewTransactionService(repo, nil)
	jwt := auth.NewJWT("test-secret")

	s := NewServer(":0", svc, repo, jwt, time.Minute)
	ts := httptest.NewServer(s.Handler)

	t.Cleanup(func() {
		ts.Close()
		s.Shutdown(context.Background())
		svc.Close()
	})

	return ts, jwt
}

func bearerToken(t *testing.T, jwt *auth.JWT, ownerID string) string {
	t.Helper()
	token, err := jwt.Generate(ownerID, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createTx(t *testing.T, ts *httptest.Server, token string, payload map[string]string) core.Transaction {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	return decodeBody[core.Transaction](t, resp)
}

func TestCreateRequiresAuth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", "", map[string]string{
		"description": "Coffee", "amount": "3.50", "date": "2025-09-03", "type": "variable-expense",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateTransaction(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	created := createTx(t, ts, token, map[string]string{
		"description": "Groceries",
		"amount":      "42.50",
		"date":        "2025-09-03",
		"type":        "variable-expense",
		"category":    "Food",
	})

	if created.ID == "" {
		t.Fatal("id should be assigned")
	}
	if created.OwnerID != "owner-1" {
		t.Fatalf("owner: got %q", created.OwnerID)
	}
	if created.Amount.Cents != 4250 {
		t.Fatalf("amount: got %d cents", created.Amount.Cents)
	}
	if created.Date.String() != "2025-09-03" {
		t.Fatalf("date: got %s", created.Date)
	}
}

func TestCreateRejectsBadPayloads(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	tests := []struct {
		name       string
		payload    map[string]string
		wantStatus int
	}{
		{"zero amount", map[string]string{"description": "x y", "amount": "0", "date": "2025-09-03", "type": "revenue"}, http.StatusUnprocessableEntity},
		{"negative amount", map[string]string{"description": "x y", "amount": "-5.00", "date": "2025-09-03", "type": "revenue"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]string{"description": "x y", "amount": "5.00", "date": "03/09/2025", "type": "revenue"}, http.StatusUnprocessableEntity},
		{"unknown type", map[string]string{"description": "x y", "amount": "5.00", "date": "2025-09-03", "type": "loan"}, http.StatusUnprocessableEntity},
		{"short description", map[string]string{"description": "x", "amount": "5.00", "date": "2025-09-03", "type": "revenue"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", token, tt.payload)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}

func TestCreateMalformedBodyIs400(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/transactions", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListFiltersAndAnonymous(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	createTx(t, ts, token, map[string]string{"description": "Salary", "amount": "5000.00", "date": "2025-09-01", "type": "revenue"})
	createTx(t, ts, token, map[string]string{"description": "Rent", "amount": "900.00", "date": "2025-09-02", "type": "fixed-expense"})
	createTx(t, ts, token, map[string]string{"description": "Groceries", "amount": "55.10", "date": "2025-09-15", "type": "variable-expense"})

	// Anonymous list is empty, not an error.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anonymous list: expected 200, got %d", resp.StatusCode)
	}
	if txs := decodeBody[[]core.Transaction](t, resp); len(txs) != 0 {
		t.Fatalf("anonymous list should be empty, got %d rows", len(txs))
	}

	// Unfiltered list is date descending.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", token, nil)
	txs := decodeBody[[]core.Transaction](t, resp)
	if len(txs) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(txs))
	}
	if txs[0].Description != "Groceries" || txs[2].Description != "Salary" {
		t.Fatalf("unexpected order: %s ... %s", txs[0].Description, txs[2].Description)
	}

	// Combined filters.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions?from=2025-09-02&type=fixed-expense", token, nil)
	txs = decodeBody[[]core.Transaction](t, resp)
	if len(txs) != 1 || txs[0].Description != "Rent" {
		t.Fatalf("filtered list: %+v", txs)
	}

	// Case-insensitive description match.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions?q=groc", token, nil)
	txs = decodeBody[[]core.Transaction](t, resp)
	if len(txs) != 1 || txs[0].Description != "Groceries" {
		t.Fatalf("description filter: %+v", txs)
	}

	// Invalid filter values are a client error.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions?from=bogus", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad filter, got %d", resp.StatusCode)
	}
}

func TestUpdateAndDeleteLifecycle(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")
	foreign := bearerToken(t, jwt, "owner-2")

	created := createTx(t, ts, token, map[string]string{
		"description": "Rent", "amount": "900.00", "date": "2025-09-02", "type": "fixed-expense",
	})
	url := ts.URL + "/api/transactions/" + created.ID

	// A foreign owner cannot see or touch the row.
	resp := doJSON(t, http.MethodPut, url, foreign, map[string]string{
		"description": "Hijacked", "amount": "1.00", "date": "2025-09-02", "type": "fixed-expense",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign update: expected 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, url, token, map[string]string{
		"description": "Rent (new lease)", "amount": "950.00", "date": "2025-09-02", "type": "fixed-expense",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeBody[core.Transaction](t, resp)
	if updated.Description != "Rent (new lease)" || updated.Amount.Cents != 95000 {
		t.Fatalf("update not applied: %+v", updated)
	}

	resp = doJSON(t, http.MethodDelete, url, token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, url, token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.StatusCode)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	createTx(t, ts, token, map[string]string{"description": "Salary", "amount": "1000.00", "date": "2025-09-01", "type": "revenue"})
	createTx(t, ts, token, map[string]string{"description": "Rent", "amount": "300.00", "date": "2025-09-03", "type": "fixed-expense", "category": "Rent"})
	createTx(t, ts, token, map[string]string{"description": "Snacks", "amount": "50.00", "date": "2025-09-20", "type": "variable-expense"})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/summary?year=2025&month=9", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", resp.StatusCode)
	}
	sum := decodeBody[core.Summary](t, resp)

	if sum.TotalRevenue.Cents != 100000 || sum.TotalExpenses.Cents != 35000 || sum.Balance.Cents != 65000 {
		t.Fatalf("totals: %+v", sum)
	}
	if len(sum.Daily) != 30 {
		t.Fatalf("daily series: expected 30 entries, got %d", len(sum.Daily))
	}
	if len(sum.ByCategory) != 2 || sum.ByCategory[0].Name != "Rent" || sum.ByCategory[1].Name != core.OtherCategory {
		t.Fatalf("breakdown: %+v", sum.ByCategory)
	}

	// Writes invalidate the cached month.
	createTx(t, ts, token, map[string]string{"description": "Bonus", "amount": "200.00", "date": "2025-09-25", "type": "revenue"})
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/summary?year=2025&month=9", token, nil)
	sum = decodeBody[core.Summary](t, resp)
	if sum.TotalRevenue.Cents != 120000 {
		t.Fatalf("cache not invalidated after write: revenue %d", sum.TotalRevenue.Cents)
	}
}

func TestSummaryAnonymousIsZero(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/summary?year=2025&month=2", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	sum := decodeBody[core.Summary](t, resp)
	if sum.TotalRevenue.Cents != 0 || sum.TotalExpenses.Cents != 0 {
		t.Fatalf("anonymous summary should be zero: %+v", sum)
	}
	if len(sum.Daily) != 28 {
		t.Fatalf("daily series: expected 28 entries, got %d", len(sum.Daily))
	}
}

func TestSummaryRejectsBadParams(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, q := range []string{"year=abc", "month=13", "month=0", "year=0"} {
		resp := doJSON(t, http.MethodGet, ts.URL+"/api/summary?"+q, "", nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", q, resp.StatusCode)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPatch, ts.URL+"/api/transactions", "", nil)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET, POST" {
		t.Fatalf("allow header: %q", allow)
	}
}

func TestAmountWireFormat(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	created := createTx(t, ts, token, map[string]string{
		"description": "Coffee beans", "amount": "12.345", "date": "2025-09-03", "type": "variable-expense",
	})
	// Half-up rounding on the third fractional digit.
	if created.Amount.Cents != 1235 {
		t.Fatalf("rounding: got %d cents", created.Amount.Cents)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", token, nil)
	raw := decodeBody[[]map[string]any](t, resp)
	if len(raw) != 1 {
		t.Fatalf("expected 1 row, got %d", len(raw))
	}
	if amount, ok := raw[0]["amount"].(string); !ok || amount != "12.35" {
		t.Fatalf("amount should be the decimal string %q, got %v", "12.35", raw[0]["amount"])
	}
}

func TestTransactionByIDBadPaths(t *testing.T) {
	ts, jwt := newTestServer(t)
	token := bearerToken(t, jwt, "owner-1")

	for _, path := range []string{"/api/transactions/", "/api/transactions/a/b"} {
		resp := doJSON(t, http.MethodDelete, ts.URL+path, token, nil)
		if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("path %q: got %d", path, resp.StatusCode)
		}
	}
}
