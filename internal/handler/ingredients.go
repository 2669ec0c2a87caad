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
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/service"
)

// IngredientStore defines the query methods needed by ingredient handlers.
// Satisfied by *database.Queries.
type IngredientStore interface {
	CreateIngredient(ctx context.Context, arg database.CreateIngredientParams) (database.Ingredient, error)
	GetIngredient(ctx context.Context, arg database.GetIngredientParams) (database.Ingredient, error)
	ListIngredientsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Ingredient, error)
	ListLowStockIngredients(ctx context.Context, restaurantID uuid.UUID) ([]database.Ingredient, error)
	UpdateIngredient(ctx context.Context, arg database.UpdateIngredientParams) (database.Ingredient, error)
	DeleteIngredient(ctx context.Context, arg database.DeleteIngredientParams) (uuid.UUID, error)
	ListTransactionsByIngredient(ctx context.Context, arg database.ListTransactionsByIngredientParams) ([]database.InventoryTransaction, error)
}

// InventoryServicer defines the stock adjustment service method.
// Satisfied by *service.InventoryService.
type InventoryServicer interface {
	AdjustStock(ctx context.Context, req service.AdjustStockRequest) (*service.AdjustStockResult, error)
}

// IngredientHandler handles ingredient CRUD, manual stock movements and the
// per-ingredient ledger view.
type IngredientHandler struct {
	store IngredientStore
	svc   InventoryServicer
}

func NewIngredientHandler(store IngredientStore, svc InventoryServicer) *IngredientHandler {
	return &IngredientHandler{store: store, svc: svc}
}

// RegisterRoutes registers ingredient endpoints. Expected to be mounted
// inside a restaurant-scoped subrouter: /restaurants/{rid}/ingredients
func (h *IngredientHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/low-stock", h.ListLowStock)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/adjust", h.Adjust)
	r.Get("/{id}/transactions", h.ListTransactions)
}

// --- Request / Response types ---

type createIngredientRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Unit         string `json:"unit" validate:"required,max=20"`
	Quantity     string `json:"quantity" validate:"required"`
	MinThreshold string `json:"min_threshold" validate:"required"`
	CostPerUnit  string `json:"cost_per_unit" validate:"required"`
}

type updateIngredientRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Unit         string `json:"unit" validate:"required,max=20"`
	MinThreshold string `json:"min_threshold" validate:"required"`
	CostPerUnit  string `json:"cost_per_unit" validate:"required"`
}

type adjustStockRequest struct {
	Delta  string `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

type ingredientResponse struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	Quantity     string    `json:"quantity"`
	MinThreshold string    `json:"min_threshold"`
	CostPerUnit  string    `json:"cost_per_unit"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type inventoryTransactionResponse struct {
	ID           uuid.UUID  `json:"id"`
	IngredientID uuid.UUID  `json:"ingredient_id"`
	Delta        string     `json:"delta"`
	Reason       string     `json:"reason"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	Note         *string    `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type adjustStockResponse struct {
	Ingredient  ingredientResponse           `json:"ingredient"`
	Transaction inventoryTransactionResponse `json:"transaction"`
}

// --- Handlers ---

// Create handles POST /restaurants/{rid}/ingredients.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	var req createIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	quantity, err := parseNonNegativeDecimal(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity")
		return
	}
	minThreshold, err := parseNonNegativeDecimal(req.MinThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid min_threshold")
		return
	}
	costPerUnit, err := parseNonNegativeDecimal(req.CostPerUnit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost_per_unit")
		return
	}

	ingredient, err := h.store.CreateIngredient(r.Context(), database.CreateIngredientParams{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Unit:         req.Unit,
		Quantity:     decimalToNumeric(quantity),
		MinThreshold: decimalToNumeric(minThreshold),
		CostPerUnit:  decimalToNumeric(costPerUnit),
	})
	if err != nil {
		writeInternalError(w, err, "create ingredient")
		return
	}

	writeJSON(w, http.StatusCreated, toIngredientResponse(ingredient))
}

// List handles GET /restaurants/{rid}/ingredients.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	ingredients, err := h.store.ListIngredientsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeInternalError(w, err, "list ingredients")
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponses(ingredients))
}

// ListLowStock handles GET /restaurants/{rid}/ingredients/low-stock.
// Returns ingredients at or below their minimum threshold.
func (h *IngredientHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	ingredients, err := h.store.ListLowStockIngredients(r.Context(), restaurantID)
	if err != nil {
		writeInternalError(w, err, "list low stock ingredients")
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponses(ingredients))
}

// Get handles GET /restaurants/{rid}/ingredients/{id}.
func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, ingredientID, ok := scopedPathIDs(w, r, "id", "ingredient")
	if !ok {
		return
	}

	ingredient, err := h.store.GetIngredient(r.Context(), database.GetIngredientParams{
		ID:           ingredientID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		writeInternalError(w, err, "get ingredient")
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

// Update handles PUT /restaurants/{rid}/ingredients/{id}. Quantity is not
// updatable here; stock only moves through the adjust endpoint so every
// movement lands in the ledger.
func (h *IngredientHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, ingredientID, ok := scopedPathIDs(w, r, "id", "ingredient")
	if !ok {
		return
	}

	var req updateIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	minThreshold, err := parseNonNegativeDecimal(req.MinThreshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid min_threshold")
		return
	}
	costPerUnit, err := parseNonNegativeDecimal(req.CostPerUnit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost_per_unit")
		return
	}

	ingredient, err := h.store.UpdateIngredient(r.Context(), database.UpdateIngredientParams{
		ID:           ingredientID,
		RestaurantID: restaurantID,
		Name:         req.Name,
		Unit:         req.Unit,
		MinThreshold: decimalToNumeric(minThreshold),
		CostPerUnit:  decimalToNumeric(costPerUnit),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		writeInternalError(w, err, "update ingredient")
		return
	}

	writeJSON(w, http.StatusOK, toIngredientResponse(ingredient))
}

// Delete handles DELETE /restaurants/{rid}/ingredients/{id}.
func (h *IngredientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, ingredientID, ok := scopedPathIDs(w, r, "id", "ingredient")
	if !ok {
		return
	}

	if _, err := h.store.DeleteIngredient(r.Context(), database.DeleteIngredientParams{
		ID:           ingredientID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "ingredient not found")
			return
		}
		writeInternalError(w, err, "delete ingredient")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Adjust handles POST /restaurants/{rid}/ingredients/{id}/adjust.
func (h *IngredientHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}
	ingredientID := chi.URLParam(r, "id")

	var req adjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	delta, err := decimal.NewFromString(req.Delta)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid delta")
		return
	}

	result, err := h.svc.AdjustStock(r.Context(), service.AdjustStockRequest{
		RestaurantID: restaurantID,
		IngredientID: ingredientID,
		Delta:        delta,
		Reason:       req.Reason,
		Note:         req.Note,
	})
	if err != nil {
		respondAdjustError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adjustStockResponse{
		Ingredient:  toIngredientResponse(result.Ingredient),
		Transaction: toTransactionResponse(result.Transaction),
	})
}

// ListTransactions handles GET /restaurants/{rid}/ingredients/{id}/transactions.
func (h *IngredientHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	restaurantID, ingredientID, ok := scopedPathIDs(w, r, "id", "ingredient")
	if !ok {
		return
	}

	limit, offset := pagingParams(r, 50, 200)

	transactions, err := h.store.ListTransactionsByIngredient(r.Context(), database.ListTransactionsByIngredientParams{
		IngredientID: ingredientID,
		RestaurantID: restaurantID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		writeInternalError(w, err, "list inventory transactions")
		return
	}

	out := make([]inventoryTransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func respondAdjustError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidReason),
		errors.Is(err, service.ErrZeroDelta),
		errors.Is(err, service.ErrInvalidIngredientID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIngredientNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeInternalError(w, err, "adjust stock")
	}
}

// --- Helpers ---

func parseNonNegativeDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative value")
	}
	return d, nil
}

// pagingParams reads limit/offset query parameters with a default and cap.
func pagingParams(r *http.Request, def, max int32) (limit, offset int32) {
	limit = def
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 && int32(v) <= max {
			limit = int32(v)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v >= 0 {
			offset = int32(v)
		}
	}
	return limit, offset
}

func toIngredientResponse(i database.Ingredient) ingredientResponse {
	return ingredientResponse{
		ID:           i.ID,
		RestaurantID: i.RestaurantID,
		Name:         i.Name,
		Unit:         i.Unit,
		Quantity:     numericToString(i.Quantity),
		MinThreshold: numericToString(i.MinThreshold),
		CostPerUnit:  numericToString(i.CostPerUnit),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func toIngredientResponses(ingredients []database.Ingredient) []ingredientResponse {
	out := make([]ingredientResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, toIngredientResponse(i))
	}
	return out
}

func toTransactionResponse(tx database.InventoryTransaction) inventoryTransactionResponse {
	resp := inventoryTransactionResponse{
		ID:           tx.ID,
		IngredientID: tx.IngredientID,
		Delta:        numericToString(tx.Delta),
		Reason:       string(tx.Reason),
		CreatedAt:    tx.CreatedAt,
	}
	if tx.OrderID.Valid {
		orderID := uuid.UUID(tx.OrderID.Bytes)
		resp.OrderID = &orderID
	}
	if tx.Note.Valid {
		note := tx.Note.String
		resp.Note = &note
	}
	return resp
}
