package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/enum"
)

// mockInventoryStore implements InventoryStore with configurable behavior.
type mockInventoryStore struct {
	getIngredientFn     func(ctx context.Context, arg database.GetIngredientParams) (database.Ingredient, error)
	adjustQuantityFn    func(ctx context.Context, arg database.AdjustIngredientQuantityParams) (database.Ingredient, error)
	createInventoryTxFn func(ctx context.Context, arg database.CreateInventoryTransactionParams) (database.InventoryTransaction, error)
	getMenuItemFn       func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	countIngredientsFn  func(ctx context.Context, arg database.CountIngredientsByRestaurantParams) (int64, error)
	deleteRecipeFn      func(ctx context.Context, menuItemID uuid.UUID) error
	createRecipeRowFn   func(ctx context.Context, arg database.CreateRecipeRowParams) (database.MenuItemIngredient, error)
	listRecipeRowsFn    func(ctx context.Context, menuItemIDs []uuid.UUID) ([]database.MenuItemIngredient, error)
}

func (m *mockInventoryStore) GetIngredient(ctx context.Context, arg database.GetIngredientParams) (database.Ingredient, error) {
	return m.getIngredientFn(ctx, arg)
}
func (m *mockInventoryStore) AdjustIngredientQuantity(ctx context.Context, arg database.AdjustIngredientQuantityParams) (database.Ingredient, error) {
	return m.adjustQuantityFn(ctx, arg)
}
func (m *mockInventoryStore) CreateInventoryTransaction(ctx context.Context, arg database.CreateInventoryTransactionParams) (database.InventoryTransaction, error) {
	return m.createInventoryTxFn(ctx, arg)
}
func (m *mockInventoryStore) GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
	return m.getMenuItemFn(ctx, arg)
}
func (m *mockInventoryStore) CountIngredientsByRestaurant(ctx context.Context, arg database.CountIngredientsByRestaurantParams) (int64, error) {
	return m.countIngredientsFn(ctx, arg)
}
func (m *mockInventoryStore) DeleteRecipeForMenuItem(ctx context.Context, menuItemID uuid.UUID) error {
	return m.deleteRecipeFn(ctx, menuItemID)
}
func (m *mockInventoryStore) CreateRecipeRow(ctx context.Context, arg database.CreateRecipeRowParams) (database.MenuItemIngredient, error) {
	return m.createRecipeRowFn(ctx, arg)
}
func (m *mockInventoryStore) ListRecipeRowsForMenuItems(ctx context.Context, menuItemIDs []uuid.UUID) ([]database.MenuItemIngredient, error) {
	return m.listRecipeRowsFn(ctx, menuItemIDs)
}

func newTestInventoryService(store *mockInventoryStore) (*InventoryService, *mockTx) {
	tx := &mockTx{}
	pool := &mockDB{tx: tx}
	newStore := func(db database.DBTX) InventoryStore { return store }
	return NewInventoryService(pool, newStore), tx
}

// defaultInventoryStore knows one ingredient and one menu item belonging to
// the restaurant. Individual tests override the functions they care about.
func defaultInventoryStore(restaurantID, ingredientID, menuItemID uuid.UUID) *mockInventoryStore {
	return &mockInventoryStore{
		getIngredientFn: func(ctx context.Context, arg database.GetIngredientParams) (database.Ingredient, error) {
			if arg.ID == ingredientID && arg.RestaurantID == restaurantID {
				return database.Ingredient{ID: ingredientID, RestaurantID: restaurantID, Name: "Rice", Unit: "kg", Quantity: makeNumeric("10")}, nil
			}
			return database.Ingredient{}, pgx.ErrNoRows
		},
		adjustQuantityFn: func(ctx context.Context, arg database.AdjustIngredientQuantityParams) (database.Ingredient, error) {
			if arg.ID == ingredientID && arg.RestaurantID == restaurantID {
				return database.Ingredient{ID: ingredientID, RestaurantID: restaurantID, Name: "Rice", Unit: "kg"}, nil
			}
			return database.Ingredient{}, pgx.ErrNoRows
		},
		createInventoryTxFn: func(ctx context.Context, arg database.CreateInventoryTransactionParams) (database.InventoryTransaction, error) {
			return database.InventoryTransaction{
				ID: uuid.New(), RestaurantID: arg.RestaurantID, IngredientID: arg.IngredientID,
				Delta: arg.Delta, Reason: arg.Reason, Note: arg.Note,
			}, nil
		},
		getMenuItemFn: func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
			if arg.ID == menuItemID && arg.RestaurantID == restaurantID {
				return database.MenuItem{ID: menuItemID, RestaurantID: restaurantID, Name: "Nasi Goreng", Category: "MAIN"}, nil
			}
			return database.MenuItem{}, pgx.ErrNoRows
		},
		countIngredientsFn: func(ctx context.Context, arg database.CountIngredientsByRestaurantParams) (int64, error) {
			count := int64(0)
			for _, id := range arg.IDs {
				if id == ingredientID {
					count++
				}
			}
			return count, nil
		},
		deleteRecipeFn: func(ctx context.Context, id uuid.UUID) error { return nil },
		createRecipeRowFn: func(ctx context.Context, arg database.CreateRecipeRowParams) (database.MenuItemIngredient, error) {
			return database.MenuItemIngredient{
				MenuItemID: arg.MenuItemID, IngredientID: arg.IngredientID,
				QuantityPerItem: arg.QuantityPerItem,
			}, nil
		},
		listRecipeRowsFn: func(ctx context.Context, menuItemIDs []uuid.UUID) ([]database.MenuItemIngredient, error) {
			return nil, nil
		},
	}
}

// =====================
// AdjustStock tests
// =====================

func TestAdjustStock_InvalidReason(t *testing.T) {
	store := defaultInventoryStore(uuid.New(), uuid.New(), uuid.New())
	svc, _ := newTestInventoryService(store)

	// Consumption rows are only written by order flows, never by hand.
	_, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		RestaurantID: uuid.New(),
		IngredientID: uuid.New().String(),
		Delta:        decimal.NewFromInt(5),
		Reason:       enum.TxReasonOrderConsumption,
	})
	if !errors.Is(err, ErrInvalidReason) {
		t.Fatalf("expected ErrInvalidReason, got: %v", err)
	}
}

func TestAdjustStock_ZeroDelta(t *testing.T) {
	store := defaultInventoryStore(uuid.New(), uuid.New(), uuid.New())
	svc, _ := newTestInventoryService(store)

	_, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		RestaurantID: uuid.New(),
		IngredientID: uuid.New().String(),
		Delta:        decimal.Zero,
		Reason:       enum.TxReasonRestock,
	})
	if !errors.Is(err, ErrZeroDelta) {
		t.Fatalf("expected ErrZeroDelta, got: %v", err)
	}
}

func TestAdjustStock_InvalidIngredientID(t *testing.T) {
	store := defaultInventoryStore(uuid.New(), uuid.New(), uuid.New())
	svc, _ := newTestInventoryService(store)

	_, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		RestaurantID: uuid.New(),
		IngredientID: "nope",
		Delta:        decimal.NewFromInt(5),
		Reason:       enum.TxReasonRestock,
	})
	if !errors.Is(err, ErrInvalidIngredientID) {
		t.Fatalf("expected ErrInvalidIngredientID, got: %v", err)
	}
}

func TestAdjustStock_IngredientNotFound(t *testing.T) {
	restaurantID := uuid.New()
	store := defaultInventoryStore(restaurantID, uuid.New(), uuid.New())
	svc, _ := newTestInventoryService(store)

	_, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		RestaurantID: restaurantID,
		IngredientID: uuid.New().String(), // unknown ingredient
		Delta:        decimal.NewFromInt(5),
		Reason:       enum.TxReasonRestock,
	})
	if !errors.Is(err, ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got: %v", err)
	}
}

func TestAdjustStock_InsufficientStock(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, uuid.New())
	// Guard refuses the update but the ingredient exists.
	store.adjustQuantityFn = func(ctx context.Context, arg database.AdjustIngredientQuantityParams) (database.Ingredient, error) {
		return database.Ingredient{}, pgx.ErrNoRows
	}

	svc, tx := newTestInventoryService(store)
	_, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		RestaurantID: restaurantID,
		IngredientID: ingredientID.String(),
		Delta:        decimal.NewFromInt(-100),
		Reason:       enum.TxReasonAdjustment,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not commit on a refused adjustment")
	}
}

func TestAdjustStock_HappyPath(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, uuid.New())

	var ledger database.CreateInventoryTransactionParams
	createTx := store.createInventoryTxFn
	store.createInventoryTxFn = func(ctx context.Context, arg database.CreateInventoryTransactionParams) (database.InventoryTransaction, error) {
		ledger = arg
		return createTx(ctx, arg)
	}

	svc, tx := newTestInventoryService(store)
	result, err := svc.AdjustStock(context.Background(), AdjustStockRequest{
		RestaurantID: restaurantID,
		IngredientID: ingredientID.String(),
		Delta:        decimal.RequireFromString("12.5"),
		Reason:       enum.TxReasonRestock,
		Note:         "weekly delivery",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.committed {
		t.Fatal("transaction should commit")
	}

	if !numericEquals(ledger.Delta, "12.5") {
		t.Errorf("ledger delta: got %v, want 12.5", numericToDecimal(ledger.Delta))
	}
	if ledger.Reason != database.TransactionReasonRESTOCK {
		t.Errorf("ledger reason: got %v, want RESTOCK", ledger.Reason)
	}
	if !ledger.Note.Valid || ledger.Note.String != "weekly delivery" {
		t.Errorf("ledger note: got %+v", ledger.Note)
	}
	if ledger.OrderID.Valid {
		t.Error("manual adjustments must not reference an order")
	}
	if result.Ingredient.ID != ingredientID {
		t.Errorf("ingredient: got %v, want %v", result.Ingredient.ID, ingredientID)
	}
}

// =====================
// UpsertRecipe tests
// =====================

func TestUpsertRecipe_MenuItemNotFound(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, uuid.New())
	svc, _ := newTestInventoryService(store)

	_, err := svc.UpsertRecipe(context.Background(), UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   uuid.New().String(),
		Rows: []RecipeRowInput{
			{IngredientID: ingredientID.String(), QuantityPerItem: decimal.NewFromInt(1)},
		},
	})
	if !errors.Is(err, ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got: %v", err)
	}
}

func TestUpsertRecipe_InvalidQuantity(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	menuItemID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, menuItemID)
	svc, _ := newTestInventoryService(store)

	_, err := svc.UpsertRecipe(context.Background(), UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID.String(),
		Rows: []RecipeRowInput{
			{IngredientID: ingredientID.String(), QuantityPerItem: decimal.Zero},
		},
	})
	if !errors.Is(err, ErrInvalidRecipeQuantity) {
		t.Fatalf("expected ErrInvalidRecipeQuantity, got: %v", err)
	}
}

func TestUpsertRecipe_DuplicateIngredient(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	menuItemID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, menuItemID)
	svc, _ := newTestInventoryService(store)

	_, err := svc.UpsertRecipe(context.Background(), UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID.String(),
		Rows: []RecipeRowInput{
			{IngredientID: ingredientID.String(), QuantityPerItem: decimal.NewFromInt(1)},
			{IngredientID: ingredientID.String(), QuantityPerItem: decimal.NewFromInt(2)},
		},
	})
	if !errors.Is(err, ErrDuplicateRecipeRow) {
		t.Fatalf("expected ErrDuplicateRecipeRow, got: %v", err)
	}
}

func TestUpsertRecipe_ForeignIngredientRejected(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	menuItemID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, menuItemID)
	svc, tx := newTestInventoryService(store)

	_, err := svc.UpsertRecipe(context.Background(), UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID.String(),
		Rows: []RecipeRowInput{
			{IngredientID: ingredientID.String(), QuantityPerItem: decimal.NewFromInt(1)},
			{IngredientID: uuid.New().String(), QuantityPerItem: decimal.NewFromInt(1)}, // other restaurant
		},
	})
	if !errors.Is(err, ErrIngredientNotInScope) {
		t.Fatalf("expected ErrIngredientNotInScope, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not commit")
	}
}

func TestUpsertRecipe_ReplacesExistingRows(t *testing.T) {
	restaurantID := uuid.New()
	ingredientID := uuid.New()
	menuItemID := uuid.New()
	store := defaultInventoryStore(restaurantID, ingredientID, menuItemID)

	deleted := false
	store.deleteRecipeFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = true
		if id != menuItemID {
			t.Errorf("delete recipe for: got %v, want %v", id, menuItemID)
		}
		return nil
	}
	var created []database.CreateRecipeRowParams
	createRow := store.createRecipeRowFn
	store.createRecipeRowFn = func(ctx context.Context, arg database.CreateRecipeRowParams) (database.MenuItemIngredient, error) {
		if !deleted {
			t.Error("old rows must be deleted before inserting new ones")
		}
		created = append(created, arg)
		return createRow(ctx, arg)
	}

	svc, tx := newTestInventoryService(store)
	rows, err := svc.UpsertRecipe(context.Background(), UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID.String(),
		Rows: []RecipeRowInput{
			{IngredientID: ingredientID.String(), QuantityPerItem: decimal.RequireFromString("0.25")},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.committed {
		t.Fatal("transaction should commit")
	}
	if len(created) != 1 || !numericEquals(created[0].QuantityPerItem, "0.25") {
		t.Fatalf("expected one row with 0.25, got %+v", created)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 returned row, got %d", len(rows))
	}
}

func TestUpsertRecipe_EmptyClearsRecipe(t *testing.T) {
	restaurantID := uuid.New()
	menuItemID := uuid.New()
	store := defaultInventoryStore(restaurantID, uuid.New(), menuItemID)

	deleted := false
	store.deleteRecipeFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = true
		return nil
	}
	store.createRecipeRowFn = func(ctx context.Context, arg database.CreateRecipeRowParams) (database.MenuItemIngredient, error) {
		t.Error("no rows should be created for an empty recipe")
		return database.MenuItemIngredient{}, nil
	}

	svc, _ := newTestInventoryService(store)
	rows, err := svc.UpsertRecipe(context.Background(), UpsertRecipeRequest{
		RestaurantID: restaurantID,
		MenuItemID:   menuItemID.String(),
		Rows:         nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("clearing a recipe should still delete existing rows")
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
