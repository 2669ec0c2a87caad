package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/service"
)

// RecipeStore defines the query methods needed by recipe handlers.
// Satisfied by *database.Queries.
type RecipeStore interface {
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	ListRecipeForMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]database.ListRecipeForMenuItemRow, error)
}

// RecipeServicer defines the recipe replacement service method.
// Satisfied by *service.InventoryService.
type RecipeServicer interface {
	UpsertRecipe(ctx context.Context, req service.UpsertRecipeRequest) ([]database.MenuItemIngredient, error)
}

// RecipeHandler exposes the per-menu-item ingredient recipe.
type RecipeHandler struct {
	store RecipeStore
	svc   RecipeServicer
}

func NewRecipeHandler(store RecipeStore, svc RecipeServicer) *RecipeHandler {
	return &RecipeHandler{store: store, svc: svc}
}

// RegisterRoutes registers recipe endpoints. Expected to be mounted inside a
// restaurant-scoped subrouter: /restaurants/{rid}/menu-items
func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}/recipe", h.Get)
	r.Put("/{id}/recipe", h.Put)
}

type recipeRowRequest struct {
	IngredientID    string `json:"ingredient_id" validate:"required,uuid"`
	QuantityPerItem string `json:"quantity_per_item" validate:"required"`
}

type putRecipeRequest struct {
	Rows []recipeRowRequest `json:"rows" validate:"dive"`
}

type recipeRowResponse struct {
	IngredientID    uuid.UUID `json:"ingredient_id"`
	IngredientName  string    `json:"ingredient_name,omitempty"`
	Unit            string    `json:"unit,omitempty"`
	QuantityPerItem string    `json:"quantity_per_item"`
}

type recipeResponse struct {
	MenuItemID uuid.UUID           `json:"menu_item_id"`
	Rows       []recipeRowResponse `json:"rows"`
}

// Get handles GET /restaurants/{rid}/menu-items/{id}/recipe.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, menuItemID, ok := scopedPathIDs(w, r, "id", "menu item")
	if !ok {
		return
	}

	// Scope check before listing; recipe rows are keyed by menu item only.
	if _, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{
		ID:           menuItemID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		writeInternalError(w, err, "get menu item for recipe")
		return
	}

	rows, err := h.store.ListRecipeForMenuItem(r.Context(), menuItemID)
	if err != nil {
		writeInternalError(w, err, "list recipe")
		return
	}

	resp := recipeResponse{MenuItemID: menuItemID, Rows: make([]recipeRowResponse, 0, len(rows))}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, recipeRowResponse{
			IngredientID:    row.IngredientID,
			IngredientName:  row.IngredientName,
			Unit:            row.Unit,
			QuantityPerItem: numericToString(row.QuantityPerItem),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Put handles PUT /restaurants/{rid}/menu-items/{id}/recipe. Replaces the
// whole recipe; an empty rows array clears it.
func (h *RecipeHandler) Put(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}
	menuItemID := chi.URLParam(r, "id")

	var req putRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	rows := make([]service.RecipeRowInput, 0, len(req.Rows))
	for i, row := range req.Rows {
		qty, err := decimal.NewFromString(row.QuantityPerItem)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid quantity_per_item at rows[%d]", i))
			return
		}
		rows = append(rows, service.RecipeRowInput{
			IngredientID:    row.IngredientID,
			QuantityPerItem: qty,
		})
	}

	saved, err := h.svc.UpsertRecipe(r.Context(), service.UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID,
		Rows:         rows,
	})
	if err != nil {
		respondRecipeError(w, err)
		return
	}

	resp := recipeResponse{Rows: make([]recipeRowResponse, 0, len(saved))}
	for _, row := range saved {
		resp.MenuItemID = row.MenuItemID
		resp.Rows = append(resp.Rows, recipeRowResponse{
			IngredientID:    row.IngredientID,
			QuantityPerItem: numericToString(row.QuantityPerItem),
		})
	}
	if resp.MenuItemID == uuid.Nil {
		// Cleared recipe; echo the path ID back.
		if id, err := uuid.Parse(menuItemID); err == nil {
			resp.MenuItemID = id
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func respondRecipeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRecipeQuantity),
		errors.Is(err, service.ErrDuplicateRecipeRow),
		errors.Is(err, service.ErrInvalidIngredientID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMenuItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrIngredientNotInScope):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeInternalError(w, err, "upsert recipe")
	}
}
