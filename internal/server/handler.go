package server

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/dashboard"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/views"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/workflow"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/ginx"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// Board is what the handlers read from and act on.
type Board interface {
	Orders() []order.Order
	RecentlyChanged() []string
	UpdatedAt() time.Time
	Find(id string) (order.Order, error)
	Transition(ctx context.Context, id string, to order.Status) (order.Order, error)
	EditContent(ctx context.Context, id string, edit workflow.Edit) (order.Order, error)
	Pending() []views.Card
	Picked() []order.Order
	Completed(day string, page *int) views.Page
	Stats(day string) views.Stats
}

// OrderHandler serves the order endpoints.
type OrderHandler struct {
	board  Board
	logger logger.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(board Board, log logger.Logger) *OrderHandler {
	return &OrderHandler{
		board:  board,
		logger: log,
	}
}

// List returns every visible order.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	resp := &BoardResponse{
		Orders:          FromOrders(h.board.Orders()),
		RecentlyChanged: h.board.RecentlyChanged(),
	}
	if at := h.board.UpdatedAt(); !at.IsZero() {
		resp.UpdatedAt = &at
	}
	ginx.Success(c, resp)
}

// Pending returns the picking lane.
// GET /api/v1/orders/pending
func (h *OrderHandler) Pending(c *gin.Context) {
	ginx.Success(c, FromCards(h.board.Pending()))
}

// Picked returns the picked column.
// GET /api/v1/orders/picked
func (h *OrderHandler) Picked(c *gin.Context) {
	ginx.Success(c, FromOrders(h.board.Picked()))
}

// Completed returns a page of the completed column.
// GET /api/v1/orders/completed?date=2026-03-01&page=0
func (h *OrderHandler) Completed(c *gin.Context) {
	day, ok := parseDay(c)
	if !ok {
		return
	}

	var page *int
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			ginx.BadRequest(c, "page must be an integer")
			return
		}
		page = &p
	}

	ginx.Success(c, FromPage(h.board.Completed(day, page)))
}

// Get returns one order.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.board.Find(c.Param("id"))
	if err != nil {
		h.respondError(c, err, nil)
		return
	}
	ginx.Success(c, FromOrder(o))
}

// Stats returns the day's headline numbers.
// GET /api/v1/stats?date=2026-03-01
func (h *OrderHandler) Stats(c *gin.Context) {
	day, ok := parseDay(c)
	if !ok {
		return
	}
	ginx.Success(c, FromStats(h.board.Stats(day)))
}

// Transition advances an order.
// POST /api/v1/orders/:id/status
func (h *OrderHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	to, err := order.ParseStatus(req.Status)
	if err != nil {
		ginx.BadRequest(c, err.Error())
		return
	}

	ctx := logger.WithOrderID(c.Request.Context(), c.Param("id"))
	o, err := h.board.Transition(ctx, c.Param("id"), to)
	if err != nil {
		h.respondError(c, err, &o)
		return
	}
	ginx.Success(c, FromOrder(o))
}

// EditItems corrects the items of a pending order.
// PUT /api/v1/orders/:id/items
func (h *OrderHandler) EditItems(c *gin.Context) {
	var req EditItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	ctx := logger.WithOrderID(c.Request.Context(), c.Param("id"))
	o, err := h.board.EditContent(ctx, c.Param("id"), req.ToEdit())
	if err != nil {
		h.respondError(c, err, &o)
		return
	}
	ginx.Success(c, FromOrder(o))
}

// respondError maps domain errors to responses. local is the order state
// after a partially successful action.
func (h *OrderHandler) respondError(c *gin.Context, err error, local *order.Order) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		ginx.NotFound(c, "order not found")
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrNotEditable),
		errors.Is(err, dashboard.ErrNotNextInLine):
		ginx.Conflict(c, err.Error())
	case errors.Is(err, workflow.ErrPersist) && local != nil:
		h.logger.Warnf(c.Request.Context(), "[API] Provisional update: %v", err)
		ginx.Provisional(c, err.Error(), FromOrder(*local))
	case errors.Is(err, workflow.ErrHook) && local != nil:
		h.logger.Warnf(c.Request.Context(), "[API] Notification failed: %v", err)
		ginx.NotifyFailed(c, err.Error(), FromOrder(*local))
	default:
		h.logger.Errorf(c.Request.Context(), "[API] Request failed: %v", err)
		ginx.InternalError(c, err.Error())
	}
}

func parseDay(c *gin.Context) (string, bool) {
	day := c.Query("date")
	if day == "" {
		return "", true
	}
	if _, err := time.Parse(views.DayLayout, day); err != nil {
		ginx.BadRequest(c, "date must be YYYY-MM-DD")
		return "", false
	}
	return day, true
}
