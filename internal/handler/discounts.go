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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/enum"
)

// DiscountStore defines the query methods needed by discount handlers.
// Satisfied by *database.Queries.
type DiscountStore interface {
	CreateDiscount(ctx context.Context, arg database.CreateDiscountParams) (database.Discount, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	GetDiscount(ctx context.Context, arg database.GetDiscountParams) (database.Discount, error)
	ListDiscountsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Discount, error)
	UpdateDiscount(ctx context.Context, arg database.UpdateDiscountParams) (database.Discount, error)
	DeleteDiscount(ctx context.Context, arg database.DeleteDiscountParams) (uuid.UUID, error)
}

// DiscountHandler handles discount rule CRUD.
type DiscountHandler struct {
	store DiscountStore
}

func NewDiscountHandler(store DiscountStore) *DiscountHandler {
	return &DiscountHandler{store: store}
}

// RegisterRoutes registers discount endpoints. Expected to be mounted inside
// a restaurant-scoped subrouter: /restaurants/{rid}/discounts
func (h *DiscountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type discountRequest struct {
	Name           string  `json:"name" validate:"required,max=120"`
	ApplyTo        string  `json:"apply_to" validate:"required"`
	TargetCategory *string `json:"target_category"`
	TargetItemID   *string `json:"target_item_id"`
	DiscountType   string  `json:"discount_type" validate:"required"`
	Value          string  `json:"value" validate:"required"`
	IsActive       *bool   `json:"is_active"`
	StartsAt       *string `json:"starts_at"`
	EndsAt         *string `json:"ends_at"`
}

type discountResponse struct {
	ID             uuid.UUID  `json:"id"`
	RestaurantID   uuid.UUID  `json:"restaurant_id"`
	Name           string     `json:"name"`
	ApplyTo        string     `json:"apply_to"`
	TargetCategory *string    `json:"target_category,omitempty"`
	TargetItemID   *uuid.UUID `json:"target_item_id,omitempty"`
	DiscountType   string     `json:"discount_type"`
	Value          string     `json:"value"`
	IsActive       bool       `json:"is_active"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Create handles POST /restaurants/{rid}/discounts.
func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	parsed, ok := decodeDiscountRequest(w, r)
	if !ok {
		return
	}
	if !h.verifyItemTarget(w, r, restaurantID, parsed) {
		return
	}

	discount, err := h.store.CreateDiscount(r.Context(), database.CreateDiscountParams{
		RestaurantID:   restaurantID,
		Name:           parsed.name,
		ApplyTo:        parsed.applyTo,
		TargetCategory: parsed.targetCategory,
		TargetItemID:   parsed.targetItemID,
		DiscountType:   parsed.discountType,
		Value:          decimalToNumeric(parsed.value),
		IsActive:       parsed.isActive,
		StartsAt:       parsed.startsAt,
		EndsAt:         parsed.endsAt,
	})
	if err != nil {
		writeInternalError(w, err, "create discount")
		return
	}

	writeJSON(w, http.StatusCreated, toDiscountResponse(discount))
}

// List handles GET /restaurants/{rid}/discounts.
func (h *DiscountHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := restaurantPathID(w, r)
	if !ok {
		return
	}

	discounts, err := h.store.ListDiscountsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeInternalError(w, err, "list discounts")
		return
	}

	out := make([]discountResponse, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, toDiscountResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /restaurants/{rid}/discounts/{id}.
func (h *DiscountHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, discountID, ok := scopedPathIDs(w, r, "id", "discount")
	if !ok {
		return
	}

	discount, err := h.store.GetDiscount(r.Context(), database.GetDiscountParams{
		ID:           discountID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "discount not found")
			return
		}
		writeInternalError(w, err, "get discount")
		return
	}

	writeJSON(w, http.StatusOK, toDiscountResponse(discount))
}

// Update handles PUT /restaurants/{rid}/discounts/{id}. Pricing is computed
// against the rules active at quote time, so edits never touch placed orders.
func (h *DiscountHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, discountID, ok := scopedPathIDs(w, r, "id", "discount")
	if !ok {
		return
	}

	parsed, ok := decodeDiscountRequest(w, r)
	if !ok {
		return
	}
	if !h.verifyItemTarget(w, r, restaurantID, parsed) {
		return
	}

	discount, err := h.store.UpdateDiscount(r.Context(), database.UpdateDiscountParams{
		ID:             discountID,
		RestaurantID:   restaurantID,
		Name:           parsed.name,
		ApplyTo:        parsed.applyTo,
		TargetCategory: parsed.targetCategory,
		TargetItemID:   parsed.targetItemID,
		DiscountType:   parsed.discountType,
		Value:          decimalToNumeric(parsed.value),
		IsActive:       parsed.isActive,
		StartsAt:       parsed.startsAt,
		EndsAt:         parsed.endsAt,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "discount not found")
			return
		}
		writeInternalError(w, err, "update discount")
		return
	}

	writeJSON(w, http.StatusOK, toDiscountResponse(discount))
}

// Delete handles DELETE /restaurants/{rid}/discounts/{id}.
func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, discountID, ok := scopedPathIDs(w, r, "id", "discount")
	if !ok {
		return
	}

	if _, err := h.store.DeleteDiscount(r.Context(), database.DeleteDiscountParams{
		ID:           discountID,
		RestaurantID: restaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "discount not found")
			return
		}
		writeInternalError(w, err, "delete discount")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// verifyItemTarget checks that an ITEM-scoped target belongs to the caller's
// restaurant. The column's FK is global, so without this lookup a discount
// could point at another restaurant's menu item and silently never match.
func (h *DiscountHandler) verifyItemTarget(w http.ResponseWriter, r *http.Request, restaurantID uuid.UUID, parsed parsedDiscount) bool {
	if !parsed.targetItemID.Valid {
		return true
	}
	_, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{
		ID:           uuid.UUID(parsed.targetItemID.Bytes),
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return false
		}
		writeInternalError(w, err, "verify discount target")
		return false
	}
	return true
}

// parsedDiscount is the validated, DB-typed form of a discountRequest.
type parsedDiscount struct {
	name           string
	applyTo        database.DiscountScope
	targetCategory pgtype.Text
	targetItemID   pgtype.UUID
	discountType   database.DiscountType
	value          decimal.Decimal
	isActive       bool
	startsAt       pgtype.Timestamptz
	endsAt         pgtype.Timestamptz
}

// decodeDiscountRequest validates the scope/target pairing the same way the
// schema constrains it: ALL carries no target, CATEGORY requires a category,
// ITEM requires a menu item ID.
func decodeDiscountRequest(w http.ResponseWriter, r *http.Request) (parsedDiscount, bool) {
	var req discountRequest
	var out parsedDiscount
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return out, false
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return out, false
	}

	out.name = req.Name

	switch req.ApplyTo {
	case enum.DiscountScopeAll:
		if req.TargetCategory != nil || req.TargetItemID != nil {
			writeError(w, http.StatusBadRequest, "ALL discounts carry no target")
			return out, false
		}
	case enum.DiscountScopeCategory:
		if req.TargetCategory == nil || *req.TargetCategory == "" || req.TargetItemID != nil {
			writeError(w, http.StatusBadRequest, "CATEGORY discounts require target_category only")
			return out, false
		}
		out.targetCategory = pgtype.Text{String: *req.TargetCategory, Valid: true}
	case enum.DiscountScopeItem:
		if req.TargetItemID == nil || req.TargetCategory != nil {
			writeError(w, http.StatusBadRequest, "ITEM discounts require target_item_id only")
			return out, false
		}
		itemID, err := uuid.Parse(*req.TargetItemID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid target_item_id")
			return out, false
		}
		out.targetItemID = pgtype.UUID{Bytes: itemID, Valid: true}
	default:
		writeError(w, http.StatusBadRequest, "invalid apply_to")
		return out, false
	}
	out.applyTo = database.DiscountScope(req.ApplyTo)

	value, err := decimal.NewFromString(req.Value)
	if err != nil || !value.IsPositive() {
		writeError(w, http.StatusBadRequest, "invalid value")
		return out, false
	}
	switch req.DiscountType {
	case enum.DiscountTypeFixed:
	case enum.DiscountTypePercentage:
		if value.GreaterThan(decimal.NewFromInt(100)) {
			writeError(w, http.StatusBadRequest, "percentage value cannot exceed 100")
			return out, false
		}
	default:
		writeError(w, http.StatusBadRequest, "invalid discount_type")
		return out, false
	}
	out.discountType = database.DiscountType(req.DiscountType)
	out.value = value

	out.isActive = true
	if req.IsActive != nil {
		out.isActive = *req.IsActive
	}

	out.startsAt, err = parseOptionalTime(req.StartsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid starts_at")
		return out, false
	}
	out.endsAt, err = parseOptionalTime(req.EndsAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ends_at")
		return out, false
	}
	if out.startsAt.Valid && out.endsAt.Valid && !out.endsAt.Time.After(out.startsAt.Time) {
		writeError(w, http.StatusBadRequest, "ends_at must be after starts_at")
		return out, false
	}

	return out, true
}

func parseOptionalTime(s *string) (pgtype.Timestamptz, error) {
	if s == nil || *s == "" {
		return pgtype.Timestamptz{}, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return pgtype.Timestamptz{}, err
	}
	return pgtype.Timestamptz{Time: t, Valid: true}, nil
}

func toDiscountResponse(d database.Discount) discountResponse {
	resp := discountResponse{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		ApplyTo:      string(d.ApplyTo),
		DiscountType: string(d.DiscountType),
		Value:        numericToString(d.Value),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
	}
	if d.TargetCategory.Valid {
		category := d.TargetCategory.String
		resp.TargetCategory = &category
	}
	if d.TargetItemID.Valid {
		itemID := uuid.UUID(d.TargetItemID.Bytes)
		resp.TargetItemID = &itemID
	}
	if d.StartsAt.Valid {
		startsAt := d.StartsAt.Time
		resp.StartsAt = &startsAt
	}
	if d.EndsAt.Valid {
		endsAt := d.EndsAt.Time
		resp.EndsAt = &endsAt
	}
	return resp
}
