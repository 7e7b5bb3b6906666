package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/dashboard"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/views"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/workflow"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/ginx"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBoard struct {
	orders   []order.Order
	err      error
	lastEdit workflow.Edit
	lastDay  string
	lastPage *int
}

func (b *fakeBoard) Orders() []order.Order { return b.orders }
func (b *fakeBoard) RecentlyChanged() []string { return []string{"1"} }
func (b *fakeBoard) UpdatedAt() time.Time { return time.Time{} }

func (b *fakeBoard) Find(id string) (order.Order, error) {
	for _, o := range b.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return order.Order{}, fmt.Errorf("%w: %s", order.ErrOrderNotFound, id)
}

func (b *fakeBoard) Transition(_ context.Context, id string, to order.Status) (order.Order, error) {
	o, err := b.Find(id)
	if err != nil {
		return o, err
	}
	o.Status = to
	return o, b.err
}

func (b *fakeBoard) EditContent(_ context.Context, id string, edit workflow.Edit) (order.Order, error) {
	b.lastEdit = edit
	o, err := b.Find(id)
	if err != nil {
		return o, err
	}
	o.Items = edit.Items
	return o, b.err
}

func (b *fakeBoard) Pending() []views.Card { return views.Pending(b.orders) }
func (b *fakeBoard) Picked() []order.Order { return views.Picked(b.orders) }

func (b *fakeBoard) Completed(day string, page *int) views.Page {
	b.lastDay, b.lastPage = day, page
	return views.Page{Day: day, Page: 0, PageSize: 15, TotalPages: 1}
}

func (b *fakeBoard) Stats(day string) views.Stats {
	return views.Stats{Day: day, Total: len(b.orders)}
}

func newTestServer(board *fakeBoard) *gin.Engine {
	return SetupRoutes(NewOrderHandler(board, logger.NewNop()), logger.NewNop(), "1")
}

func sampleBoard() *fakeBoard {
	return &fakeBoard{orders: []order.Order{
		{ID: "1", CustomerName: "Maria", Status: order.StatusPending, Total: 10},
		{ID: "2", CustomerName: "Joana", Status: order.StatusPicked, Total: 5},
	}}
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, ginx.Response) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp ginx.Response
	if w.Code != http.StatusOK || strings.HasPrefix(path, "/api") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	t.Parallel()

	w, _ := do(t, newTestServer(sampleBoard()), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	r := newTestServer(sampleBoard())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestListAndLanes(t *testing.T) {
	t.Parallel()

	r := newTestServer(sampleBoard())

	_, resp := do(t, r, http.MethodGet, "/api/v1/orders", "")
	data := resp.Data.(map[string]interface{})
	if n := len(data["orders"].([]interface{})); n != 2 {
		t.Fatalf("expected 2 orders, got %d", n)
	}

	_, resp = do(t, r, http.MethodGet, "/api/v1/orders/pending", "")
	cards := resp.Data.([]interface{})
	if len(cards) != 1 || !cards[0].(map[string]interface{})["can_advance"].(bool) {
		t.Fatalf("expected one advanceable card, got %v", cards)
	}

	_, resp = do(t, r, http.MethodGet, "/api/v1/orders/picked", "")
	if n := len(resp.Data.([]interface{})); n != 1 {
		t.Fatalf("expected 1 picked, got %d", n)
	}
}

func TestGetOrder(t *testing.T) {
	t.Parallel()

	r := newTestServer(sampleBoard())

	w, resp := do(t, r, http.MethodGet, "/api/v1/orders/1", "")
	if w.Code != http.StatusOK || resp.Data.(map[string]interface{})["client_name"] != "Maria" {
		t.Fatalf("expected Maria, got %d %v", w.Code, resp.Data)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/orders/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCompletedQueryParsing(t *testing.T) {
	t.Parallel()

	board := sampleBoard()
	r := newTestServer(board)

	w, _ := do(t, r, http.MethodGet, "/api/v1/orders/completed?date=2026-03-01&page=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if board.lastDay != "2026-03-01" || board.lastPage == nil || *board.lastPage != 2 {
		t.Fatalf("expected day and page forwarded, got %q %v", board.lastDay, board.lastPage)
	}

	w, _ = do(t, r, http.MethodGet, "/api/v1/orders/completed", "")
	if w.Code != http.StatusOK || board.lastDay != "" || board.lastPage != nil {
		t.Fatalf("expected cursor untouched without params")
	}

	for _, q := range []string{"?date=01/03/2026", "?page=abc"} {
		w, _ = do(t, r, http.MethodGet, "/api/v1/orders/completed"+q, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	_, resp := do(t, newTestServer(sampleBoard()), http.MethodGet, "/api/v1/stats?date=2026-03-01", "")
	data := resp.Data.(map[string]interface{})
	if data["day"] != "2026-03-01" || data["total"].(float64) != 2 {
		t.Fatalf("unexpected stats %v", data)
	}
}

func TestTransitionErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"ok", nil, http.StatusOK, 200},
		{"invalid", order.ErrInvalidTransition, http.StatusConflict, http.StatusConflict},
		{"not next", dashboard.ErrNotNextInLine, http.StatusConflict, http.StatusConflict},
		{"persist", fmt.Errorf("%w: timeout", workflow.ErrPersist), http.StatusOK, ginx.CodeProvisional},
		{"hook", fmt.Errorf("%w: gateway down", workflow.ErrHook), http.StatusOK, ginx.CodeNotifyFailed},
		{"other", errors.New("boom"), http.StatusInternalServerError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		board := sampleBoard()
		board.err = tc.err

		w, resp := do(t, newTestServer(board), http.MethodPost, "/api/v1/orders/1/status", `{"status":"separado"}`)
		if w.Code != tc.wantHTTP || resp.Meta.Code != tc.wantCode {
			t.Fatalf("%s: expected %d/%d, got %d/%d", tc.name, tc.wantHTTP, tc.wantCode, w.Code, resp.Meta.Code)
		}
		if tc.wantHTTP == http.StatusOK && resp.Data.(map[string]interface{})["status"] != "separado" {
			t.Fatalf("%s: expected local order returned, got %v", tc.name, resp.Data)
		}
	}
}

func TestTransitionRejectsBadInput(t *testing.T) {
	t.Parallel()

	r := newTestServer(sampleBoard())
	for _, body := range []string{`{}`, `{"status":"shipped"}`, `not json`} {
		w, _ := do(t, r, http.MethodPost, "/api/v1/orders/1/status", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, w.Code)
		}
	}

	w, _ := do(t, r, http.MethodPost, "/api/v1/orders/99/status", `{"status":"separado"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestEditItems(t *testing.T) {
	t.Parallel()

	board := sampleBoard()
	r := newTestServer(board)

	body := `{"items":[{"product_name":"Arroz","quantity":2,"unit_price":5.5}],"observacao":"sem sacola"}`
	w, resp := do(t, r, http.MethodPut, "/api/v1/orders/1/items", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, resp.Meta.Message)
	}
	if len(board.lastEdit.Items) != 1 || board.lastEdit.Items[0].Name != "Arroz" {
		t.Fatalf("expected items forwarded, got %v", board.lastEdit.Items)
	}
	if board.lastEdit.Note == nil || *board.lastEdit.Note != "sem sacola" {
		t.Fatalf("expected note forwarded")
	}

	board.err = order.ErrNotEditable
	w, _ = do(t, r, http.MethodPut, "/api/v1/orders/1/items", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestEditItemsValidation(t *testing.T) {
	t.Parallel()

	r := newTestServer(sampleBoard())
	bodies := []string{
		`{"items":[]}`,
		`{"items":[{"product_name":"","quantity":1,"unit_price":1}]}`,
		`{"items":[{"product_name":"Arroz","quantity":-1,"unit_price":1}]}`,
		`{"items":[{"product_name":"Arroz","quantity":1,"unit_price":-1}]}`,
	}
	for _, body := range bodies {
		w, resp := do(t, r, http.MethodPut, "/api/v1/orders/1/items", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, w.Code)
		}
		if body != `{"items":[]}` && len(resp.Meta.Details) == 0 {
			t.Fatalf("%s: expected field details", body)
		}
	}
}

func TestEditItemsAcceptsZeroQuantity(t *testing.T) {
	t.Parallel()

	board := sampleBoard()
	body := `{"items":[{"product_name":"Banana","quantity":0,"unit_price":6.99}]}`
	w, resp := do(t, newTestServer(board), http.MethodPut, "/api/v1/orders/1/items", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, resp.Meta.Message)
	}
	if len(board.lastEdit.Items) != 1 || board.lastEdit.Items[0].Quantity != 0 {
		t.Fatalf("expected zero quantity forwarded, got %v", board.lastEdit.Items)
	}
}
