package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/service"
	"github.com/savoro-pos/api/internal/ws"
)

// PricingServicer defines the pricing preview service method.
// Satisfied by *service.PricingService.
type PricingServicer interface {
	PreviewPricing(ctx context.Context, req service.PreviewRequest) (*service.Quote, error)
}

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderDetail, error)
	AdvanceStatus(ctx context.Context, restaurantID, orderID uuid.UUID, target string) (*service.OrderDetail, error)
	Cancel(ctx context.Context, restaurantID, orderID uuid.UUID) (*service.OrderDetail, error)
	GetOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, req service.ListOrdersRequest) ([]database.Order, error)
}

// Broadcaster pushes order events to connected kitchen displays.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToRestaurant(restaurantID uuid.UUID, event ws.Event)
}

// OrderHandler handles the public ordering surface and the staff order
// lifecycle endpoints.
type OrderHandler struct {
	pricing PricingServicer
	svc     OrderServicer
	hub     Broadcaster
}

func NewOrderHandler(pricing PricingServicer, svc OrderServicer, hub Broadcaster) *OrderHandler {
	return &OrderHandler{pricing: pricing, svc: svc, hub: hub}
}

// RegisterPublicRoutes registers the unauthenticated customer endpoints.
func (h *OrderHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/pricing/preview", h.Preview)
	r.Post("/orders", h.Place)
}

// RegisterRoutes registers staff endpoints. Expected to be mounted inside a
// restaurant-scoped subrouter: /restaurants/{rid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type cartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
}

type previewRequest struct {
	TableID string            `json:"table_id"`
	Items   []cartItemRequest `json:"items"`
}

type placeOrderRequest struct {
	TableID      string            `json:"table_id"`
	CustomerNote string            `json:"customer_note"`
	Items        []cartItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type appliedDiscountResponse struct {
	DiscountID uuid.UUID `json:"discount_id"`
	Type       string    `json:"type"`
	ApplyTo    string    `json:"apply_to"`
	Amount     string    `json:"amount"`
}

type quoteLineResponse struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	UnitPrice  string    `json:"unit_price"`
	Quantity   int32     `json:"quantity"`
	Subtotal   string    `json:"subtotal"`
}

type quoteResponse struct {
	RestaurantID     uuid.UUID                `json:"restaurant_id"`
	TableID          uuid.UUID                `json:"table_id"`
	Lines            []quoteLineResponse      `json:"lines"`
	Subtotal         string                   `json:"subtotal"`
	Discount         *appliedDiscountResponse `json:"discount"`
	DiscountAmount   string                   `json:"discount_amount"`
	VatAmount        string                   `json:"vat_amount"`
	TipAmount        string                   `json:"tip_amount"`
	TotalAmount      string                   `json:"total_amount"`
	CommissionRate   string                   `json:"commission_rate"`
	CommissionAmount string                   `json:"commission_amount"`
}

type orderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	UnitPrice  string    `json:"unit_price"`
	Quantity   int32     `json:"quantity"`
	Subtotal   string    `json:"subtotal"`
}

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	RestaurantID     uuid.UUID           `json:"restaurant_id"`
	TableID          uuid.UUID           `json:"table_id"`
	Status           string              `json:"status"`
	CustomerNote     *string             `json:"customer_note"`
	Subtotal         string              `json:"subtotal"`
	DiscountID       *string             `json:"discount_id"`
	DiscountAmount   string              `json:"discount_amount"`
	VatAmount        string              `json:"vat_amount"`
	TipAmount        string              `json:"tip_amount"`
	TotalAmount      string              `json:"total_amount"`
	CommissionRate   string              `json:"commission_rate"`
	CommissionAmount string              `json:"commission_amount"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Items            []orderItemResponse `json:"items"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// --- Public handlers ---

// Preview handles POST /public/pricing/preview.
func (h *OrderHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.pricing.PreviewPricing(r.Context(), service.PreviewRequest{
		TableID: req.TableID,
		Items:   toCartItems(req.Items),
	})
	if err != nil {
		respondOrderError(w, err, "preview pricing")
		return
	}

	writeJSON(w, http.StatusOK, toQuoteResponse(quote))
}

// Place handles POST /public/orders.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		TableID:      req.TableID,
		CustomerNote: req.CustomerNote,
		Items:        toCartItems(req.Items),
	})
	if err != nil {
		respondOrderError(w, err, "place order")
		return
	}

	resp := toOrderResponse(result)
	h.broadcast(result.Order.RestaurantID, "order.placed", resp)
	writeJSON(w, http.StatusCreated, resp)
}

// --- Staff handlers ---

// List handles GET /restaurants/{rid}/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid restaurant ID")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > 100 {
		limit = 100
	}
	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}

	orders, err := h.svc.ListOrders(r.Context(), service.ListOrdersRequest{
		RestaurantID: restaurantID,
		Status:       r.URL.Query().Get("status"),
		Limit:        int32(limit),
		Offset:       int32(offset),
	})
	if err != nil {
		respondOrderError(w, err, "list orders")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dbOrderToResponse(o, nil)
	}

	writeJSON(w, http.StatusOK, orderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Get handles GET /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := orderPathIDs(w, r)
	if !ok {
		return
	}

	result, err := h.svc.GetOrder(r.Context(), restaurantID, orderID)
	if err != nil {
		respondOrderError(w, err, "get order")
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(result))
}

// UpdateStatus handles PATCH /restaurants/{rid}/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := orderPathIDs(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	result, err := h.svc.AdvanceStatus(r.Context(), restaurantID, orderID, req.Status)
	if err != nil {
		respondOrderError(w, err, "update order status")
		return
	}

	resp := toOrderResponse(result)
	h.broadcast(restaurantID, "order.status_updated", resp)
	writeJSON(w, http.StatusOK, resp)
}

// Cancel handles DELETE /restaurants/{rid}/orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	restaurantID, orderID, ok := orderPathIDs(w, r)
	if !ok {
		return
	}

	result, err := h.svc.Cancel(r.Context(), restaurantID, orderID)
	if err != nil {
		respondOrderError(w, err, "cancel order")
		return
	}

	resp := toOrderResponse(result)
	h.broadcast(restaurantID, "order.cancelled", resp)
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func orderPathIDs(w http.ResponseWriter, r *http.Request) (restaurantID, orderID uuid.UUID, ok bool) {
	return scopedPathIDs(w, r, "id", "order")
}

func (h *OrderHandler) broadcast(restaurantID uuid.UUID, eventType string, payload interface{}) {
	if h.hub == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.hub.BroadcastToRestaurant(restaurantID, ws.Event{Type: eventType, Payload: raw})
}

func toCartItems(items []cartItemRequest) []service.CartItemInput {
	out := make([]service.CartItemInput, len(items))
	for i, item := range items {
		out[i] = service.CartItemInput{MenuItemID: item.MenuItemID, Quantity: item.Quantity}
	}
	return out
}

// respondOrderError maps known service errors to HTTP status codes.
func respondOrderError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, service.ErrInvalidTableID),
		errors.Is(err, service.ErrInvalidMenuItemID),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, service.ErrMenuItemUnavailable),
		errors.Is(err, service.ErrInsufficientStock):
		// The cart references something that cannot be fulfilled right now.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrStatusConflict),
		errors.Is(err, service.ErrOrderAlreadyCancelled),
		errors.Is(err, service.ErrCannotCancelCompleted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeInternalError(w, err, context)
	}
}

func toQuoteResponse(q *service.Quote) quoteResponse {
	resp := quoteResponse{
		RestaurantID:     q.RestaurantID,
		TableID:          q.TableID,
		Subtotal:         q.Subtotal.StringFixed(2),
		DiscountAmount:   q.Discount.Amount.StringFixed(2),
		VatAmount:        q.Totals.VatAmount.StringFixed(2),
		TipAmount:        q.Totals.TipAmount.StringFixed(2),
		TotalAmount:      q.Totals.Total.StringFixed(2),
		CommissionRate:   q.Totals.CommissionRate.StringFixed(2),
		CommissionAmount: q.Totals.CommissionAmount.StringFixed(2),
	}
	if q.Discount.Applied != nil {
		resp.Discount = &appliedDiscountResponse{
			DiscountID: q.Discount.Applied.DiscountID,
			Type:       q.Discount.Applied.Type,
			ApplyTo:    q.Discount.Applied.ApplyTo,
			Amount:     q.Discount.Applied.Amount.StringFixed(2),
		}
	}
	resp.Lines = make([]quoteLineResponse, len(q.Lines))
	for i, line := range q.Lines {
		resp.Lines[i] = quoteLineResponse{
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Category:   line.Category,
			UnitPrice:  line.UnitPrice.StringFixed(2),
			Quantity:   line.Quantity,
			Subtotal:   line.Subtotal.StringFixed(2),
		}
	}
	return resp
}

func toOrderResponse(d *service.OrderDetail) orderResponse {
	items := make([]orderItemResponse, len(d.Items))
	for i, item := range d.Items {
		items[i] = orderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Category:   item.Category,
			UnitPrice:  numericToString(item.UnitPrice),
			Quantity:   item.Quantity,
			Subtotal:   numericToString(item.Subtotal),
		}
	}
	return dbOrderToResponse(d.Order, items)
}

func dbOrderToResponse(o database.Order, items []orderItemResponse) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		RestaurantID:     o.RestaurantID,
		TableID:          o.TableID,
		Status:           string(o.Status),
		Subtotal:         numericToString(o.Subtotal),
		DiscountAmount:   numericToString(o.DiscountAmount),
		VatAmount:        numericToString(o.VatAmount),
		TipAmount:        numericToString(o.TipAmount),
		TotalAmount:      numericToString(o.TotalAmount),
		CommissionRate:   numericToString(o.CommissionRate),
		CommissionAmount: numericToString(o.CommissionAmount),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            items,
	}
	if o.CustomerNote.Valid {
		resp.CustomerNote = &o.CustomerNote.String
	}
	if o.DiscountID.Valid {
		s := uuid.UUID(o.DiscountID.Bytes).String()
		resp.DiscountID = &s
	}
	if resp.Items == nil {
		resp.Items = []orderItemResponse{}
	}
	return resp
}
