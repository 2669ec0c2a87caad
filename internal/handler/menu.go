package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
)

// MenuStore defines the query methods needed by menu item handlers.
// Satisfied by *database.Queries.
type MenuStore interface {
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, arg database.SoftDeleteMenuItemParams) (uuid.UUID, error)
}

// MenuHandler handles menu item CRUD for restaurant staff.
type MenuHandler struct {
	store MenuStore
}

func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers menu item endpoints. Expected to be mounted
// inside a restaurant-scoped subrouter: /restaurants/{rid}/menu-items
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type menuItemRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Category    string `json:"category" validate:"required,max=60"`
	Price       string `json:"price" validate:"required"`
	IsAvailable *bool  `json:"is_available"`
}

type menuItemResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Price        string    `json:"price"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Create handles POST /restaurants/{rid}/menu-items.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	req, price, ok := decodeMenuItemRequest(w, r)
	if !ok {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Category:     req.Category,
		Price:        decimalToNumeric(price),
		IsAvailable:  available,
	})
	if err != nil {
		writeInternalError(w, err, "create menu item")
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// List handles GET /restaurants/{rid}/menu-items.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	items, err := h.store.ListMenuItemsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeInternalError(w, err, "list menu items")
		return
	}

	out := make([]menuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toMenuItemResponse(item))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /restaurants/{rid}/menu-items/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, itemID, ok := scopedPathIDs(w, r, "id", "menu item")
	if !ok {
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{
		ID:           itemID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternalError(w, err, "get menu item")
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Update handles PUT /restaurants/{rid}/menu-items/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, itemID, ok := scopedPathIDs(w, r, "id", "menu item")
	if !ok {
		return
	}

	req, price, ok := decodeMenuItemRequest(w, r)
	if !ok {
		return
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:           itemID,
		RestaurantID: restaurantID,
		Name:         req.Name,
		Category:     req.Category,
		Price:        decimalToNumeric(price),
		IsAvailable:  available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternalError(w, err, "update menu item")
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /restaurants/{rid}/menu-items/{id}. Soft delete;
// placed orders keep their item snapshots either way.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, itemID, ok := scopedPathIDs(w, r, "id", "menu item")
	if !ok {
		return
	}

	if _, err := h.store.SoftDeleteMenuItem(r.Context(), database.SoftDeleteMenuItemParams{
		ID:           itemID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternalError(w, err, "delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeMenuItemRequest(w http.ResponseWriter, r *http.Request) (menuItemRequest, decimal.Decimal, bool) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, decimal.Zero, false
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return req, decimal.Zero, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid price")
		return req, decimal.Zero, false
	}
	return req, price, true
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Category:     m.Category,
		Price:        numericToString(m.Price),
		IsAvailable:  m.IsAvailable,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
