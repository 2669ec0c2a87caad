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

	"github.com/savoro-pos/api/internal/database"
)

// TableStore defines the query methods needed by table handlers.
// Satisfied by *database.Queries.
type TableStore interface {
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.RestaurantTable, error)
	ListTablesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.RestaurantTable, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.RestaurantTable, error)
	DeleteTable(ctx context.Context, arg database.DeleteTableParams) (uuid.UUID, error)
}

// TableHandler handles dining table CRUD. Each table's ID doubles as the
// token encoded in its printed QR code.
type TableHandler struct {
	store TableStore
}

func NewTableHandler(store TableStore) *TableHandler {
	return &TableHandler{store: store}
}

// RegisterRoutes registers table endpoints. Expected to be mounted inside a
// restaurant-scoped subrouter: /restaurants/{rid}/tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type createTableRequest struct {
	Label string `json:"label" validate:"required,max=60"`
}

type updateTableRequest struct {
	Label    string `json:"label" validate:"required,max=60"`
	IsActive *bool  `json:"is_active"`
}

type tableResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Label        string    `json:"label"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Create handles POST /restaurants/{rid}/tables.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		RestaurantID: restaurantID,
		Label:        req.Label,
	})
	if err != nil {
		writeInternalError(w, err, "create table")
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(table))
}

// List handles GET /restaurants/{rid}/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	tables, err := h.store.ListTablesByRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeInternalError(w, err, "list tables")
		return
	}

	out := make([]tableResponse, 0, len(tables))
	for _, table := range tables {
		out = append(out, toTableResponse(table))
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /restaurants/{rid}/tables/{id}.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, tableID, ok := scopedPathIDs(w, r, "id", "table")
	if !ok {
		return
	}

	var req updateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	table, err := h.store.UpdateTable(r.Context(), database.UpdateTableParams{
		ID:           tableID,
		RestaurantID: restaurantID,
		Label:        req.Label,
		IsActive:     active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		writeInternalError(w, err, "update table")
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// Delete handles DELETE /restaurants/{rid}/tables/{id}. Deactivates the
// table; its QR code stops resolving but order history keeps the row.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, tableID, ok := scopedPathIDs(w, r, "id", "table")
	if !ok {
		return
	}

	if _, err := h.store.DeleteTable(r.Context(), database.DeleteTableParams{
		ID:           tableID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		writeInternalError(w, err, "delete table")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTableResponse(t database.RestaurantTable) tableResponse {
	return tableResponse{
		ID:           t.ID,
		RestaurantID: t.RestaurantID,
		Label:        t.Label,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
	}
}
