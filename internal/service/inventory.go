package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/enum"
)

// Errors returned by the inventory service.
var (
	ErrIngredientNotFound    = errors.New("ingredient not found")
	ErrInsufficientStock     = errors.New("quantity would go negative")
	ErrInvalidReason         = errors.New("invalid reason")
	ErrZeroDelta             = errors.New("delta must be non-zero")
	ErrInvalidIngredientID   = errors.New("invalid ingredient_id")
	ErrInvalidRecipeQuantity = errors.New("quantity_per_item must be > 0")
	ErrDuplicateRecipeRow    = errors.New("duplicate ingredient in recipe")
	ErrIngredientNotInScope  = errors.New("ingredient not found in restaurant")
)

// InventoryStore defines the DB methods needed by the inventory ledger.
// Satisfied by *database.Queries (and its WithTx variant).
type InventoryStore interface {
	GetIngredient(ctx context.Context, arg database.GetIngredientParams) (database.Ingredient, error)
	AdjustIngredientQuantity(ctx context.Context, arg database.AdjustIngredientQuantityParams) (database.Ingredient, error)
	CreateInventoryTransaction(ctx context.Context, arg database.CreateInventoryTransactionParams) (database.InventoryTransaction, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CountIngredientsByRestaurant(ctx context.Context, arg database.CountIngredientsByRestaurantParams) (int64, error)
	DeleteRecipeForMenuItem(ctx context.Context, menuItemID uuid.UUID) error
	CreateRecipeRow(ctx context.Context, arg database.CreateRecipeRowParams) (database.MenuItemIngredient, error)
	ListRecipeRowsForMenuItems(ctx context.Context, menuItemIDs []uuid.UUID) ([]database.MenuItemIngredient, error)
}

// NewInventoryStore creates an InventoryStore from a DBTX (pool or tx).
type NewInventoryStore func(db database.DBTX) InventoryStore

// InventoryService owns ingredient stock levels and the append-only ledger.
type InventoryService struct {
	pool     TxBeginner
	newStore NewInventoryStore
}

func NewInventoryService(pool TxBeginner, newStore NewInventoryStore) *InventoryService {
	return &InventoryService{pool: pool, newStore: newStore}
}

// AdjustStockRequest is the validated input for a manual stock adjustment.
type AdjustStockRequest struct {
	RestaurantID uuid.UUID
	IngredientID string
	Delta        decimal.Decimal
	Reason       string // enum.TxReasonRestock or enum.TxReasonAdjustment
	Note         string
}

// AdjustStockResult pairs the updated ingredient with its ledger entry.
type AdjustStockResult struct {
	Ingredient  database.Ingredient
	Transaction database.InventoryTransaction
}

// AdjustStock applies a signed delta to an ingredient and appends the
// matching ledger row in one transaction. The quantity update is a guarded
// single-row UPDATE, so concurrent adjustments serialize and a delta that
// would drive the quantity negative fails without side effects.
func (s *InventoryService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustStockResult, error) {
	switch req.Reason {
	case enum.TxReasonRestock, enum.TxReasonAdjustment:
	default:
		return nil, ErrInvalidReason
	}
	if req.Delta.IsZero() {
		return nil, ErrZeroDelta
	}

	ingredientID, err := uuid.Parse(req.IngredientID)
	if err != nil {
		return nil, ErrInvalidIngredientID
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	ingredient, err := store.AdjustIngredientQuantity(ctx, database.AdjustIngredientQuantityParams{
		ID:           ingredientID,
		RestaurantID: req.RestaurantID,
		Delta:        decimalToNumeric(req.Delta),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row updated: either the ingredient is missing or the guard
			// rejected a negative result. Fetch to tell the two apart.
			if _, getErr := store.GetIngredient(ctx, database.GetIngredientParams{
				ID:           ingredientID,
				RestaurantID: req.RestaurantID,
			}); getErr != nil {
				if errors.Is(getErr, pgx.ErrNoRows) {
					return nil, ErrIngredientNotFound
				}
				return nil, fmt.Errorf("get ingredient: %w", getErr)
			}
			return nil, ErrInsufficientStock
		}
		return nil, fmt.Errorf("adjust quantity: %w", err)
	}

	note := pgtype.Text{}
	if req.Note != "" {
		note = pgtype.Text{String: req.Note, Valid: true}
	}

	txRow, err := store.CreateInventoryTransaction(ctx, database.CreateInventoryTransactionParams{
		RestaurantID: req.RestaurantID,
		IngredientID: ingredientID,
		Delta:        decimalToNumeric(req.Delta),
		Reason:       database.TransactionReason(req.Reason),
		Note:         note,
	})
	if err != nil {
		return nil, fmt.Errorf("create inventory transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &AdjustStockResult{Ingredient: ingredient, Transaction: txRow}, nil
}

// RecipeRowInput is one ingredient requirement in a recipe upsert.
type RecipeRowInput struct {
	IngredientID    string
	QuantityPerItem decimal.Decimal
}

// UpsertRecipeRequest replaces a menu item's full recipe.
type UpsertRecipeRequest struct {
	RestaurantID uuid.UUID
	MenuItemID   string
	Rows         []RecipeRowInput
}

// UpsertRecipe atomically replaces the recipe for a menu item. The menu item
// and every referenced ingredient must belong to the restaurant. An empty
// row set clears the recipe. Delete-then-insert runs in one transaction, so
// a failed insert leaves the previous recipe intact.
func (s *InventoryService) UpsertRecipe(ctx context.Context, req UpsertRecipeRequest) ([]database.MenuItemIngredient, error) {
	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		return nil, ErrMenuItemNotFound
	}

	ingredientIDs := make([]uuid.UUID, 0, len(req.Rows))
	seen := make(map[uuid.UUID]bool, len(req.Rows))
	for i, row := range req.Rows {
		if row.QuantityPerItem.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("rows[%d]: %w", i, ErrInvalidRecipeQuantity)
		}
		id, err := uuid.Parse(row.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("rows[%d]: %w", i, ErrInvalidIngredientID)
		}
		if seen[id] {
			return nil, fmt.Errorf("rows[%d]: %w", i, ErrDuplicateRecipeRow)
		}
		seen[id] = true
		ingredientIDs = append(ingredientIDs, id)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetMenuItem(ctx, database.GetMenuItemParams{
		ID:           menuItemID,
		RestaurantID: req.RestaurantID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	if len(ingredientIDs) > 0 {
		count, err := store.CountIngredientsByRestaurant(ctx, database.CountIngredientsByRestaurantParams{
			RestaurantID: req.RestaurantID,
			IDs:          ingredientIDs,
		})
		if err != nil {
			return nil, fmt.Errorf("count ingredients: %w", err)
		}
		if count != int64(len(ingredientIDs)) {
			return nil, ErrIngredientNotInScope
		}
	}

	if err := store.DeleteRecipeForMenuItem(ctx, menuItemID); err != nil {
		return nil, fmt.Errorf("delete recipe: %w", err)
	}

	rows := make([]database.MenuItemIngredient, 0, len(req.Rows))
	for i, row := range req.Rows {
		created, err := store.CreateRecipeRow(ctx, database.CreateRecipeRowParams{
			MenuItemID:      menuItemID,
			IngredientID:    ingredientIDs[i],
			QuantityPerItem: decimalToNumeric(row.QuantityPerItem),
		})
		if err != nil {
			return nil, fmt.Errorf("create recipe row: %w", err)
		}
		rows = append(rows, created)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return rows, nil
}

// inventoryConsumer is the subset of store methods recipe consumption
// needs; satisfied by both InventoryStore and OrderStore implementations.
type inventoryConsumer interface {
	AdjustIngredientQuantity(ctx context.Context, arg database.AdjustIngredientQuantityParams) (database.Ingredient, error)
	CreateInventoryTransaction(ctx context.Context, arg database.CreateInventoryTransactionParams) (database.InventoryTransaction, error)
	ListRecipeRowsForMenuItems(ctx context.Context, menuItemIDs []uuid.UUID) ([]database.MenuItemIngredient, error)
}

// consumedLine is one (menu item, quantity) pair to draw ingredients for.
type consumedLine struct {
	MenuItemID uuid.UUID
	Quantity   int32
}

// consumeForOrder draws down every ingredient an order's lines require,
// with one ORDER_CONSUMPTION ledger row per ingredient. Must run inside the
// caller's transaction: if any ingredient would go negative the returned
// ErrInsufficientStock aborts the whole batch. Ingredients are processed in
// a stable order so concurrent consumptions acquire row locks consistently.
func consumeForOrder(ctx context.Context, store inventoryConsumer, restaurantID, orderID uuid.UUID, lines []consumedLine) error {
	menuItemIDs := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		menuItemIDs = append(menuItemIDs, line.MenuItemID)
	}

	recipeRows, err := store.ListRecipeRowsForMenuItems(ctx, menuItemIDs)
	if err != nil {
		return fmt.Errorf("list recipe rows: %w", err)
	}

	perItem := make(map[uuid.UUID][]database.MenuItemIngredient)
	for _, row := range recipeRows {
		perItem[row.MenuItemID] = append(perItem[row.MenuItemID], row)
	}

	needed := make(map[uuid.UUID]decimal.Decimal)
	for _, line := range lines {
		qty := decimal.NewFromInt32(line.Quantity)
		for _, row := range perItem[line.MenuItemID] {
			needed[row.IngredientID] = needed[row.IngredientID].Add(numericToDecimal(row.QuantityPerItem).Mul(qty))
		}
	}

	ingredientIDs := make([]uuid.UUID, 0, len(needed))
	for id := range needed {
		ingredientIDs = append(ingredientIDs, id)
	}
	sort.Slice(ingredientIDs, func(i, j int) bool {
		return ingredientIDs[i].String() < ingredientIDs[j].String()
	})

	orderRef := pgtype.UUID{Bytes: orderID, Valid: true}
	for _, ingredientID := range ingredientIDs {
		delta := needed[ingredientID].Neg()
		if _, err := store.AdjustIngredientQuantity(ctx, database.AdjustIngredientQuantityParams{
			ID:           ingredientID,
			RestaurantID: restaurantID,
			Delta:        decimalToNumeric(delta),
		}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("ingredient %s: %w", ingredientID, ErrInsufficientStock)
			}
			return fmt.Errorf("consume ingredient %s: %w", ingredientID, err)
		}

		if _, err := store.CreateInventoryTransaction(ctx, database.CreateInventoryTransactionParams{
			RestaurantID: restaurantID,
			IngredientID: ingredientID,
			Delta:        decimalToNumeric(delta),
			Reason:       database.TransactionReasonORDERCONSUMPTION,
			OrderID:      orderRef,
		}); err != nil {
			return fmt.Errorf("log consumption for %s: %w", ingredientID, err)
		}
	}

	return nil
}
