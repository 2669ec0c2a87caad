package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createIngredient = `-- name: CreateIngredient :one
INSERT INTO ingredients (restaurant_id, name, unit, quantity, min_threshold, cost_per_unit)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, restaurant_id, name, unit, quantity, min_threshold, cost_per_unit, created_at, updated_at
`

type CreateIngredientParams struct {
	RestaurantID uuid.UUID
	Name         string
	Unit         string
	Quantity     pgtype.Numeric
	MinThreshold pgtype.Numeric
	CostPerUnit  pgtype.Numeric
}

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, createIngredient,
		arg.RestaurantID,
		arg.Name,
		arg.Unit,
		arg.Quantity,
		arg.MinThreshold,
		arg.CostPerUnit,
	)
	var i Ingredient
	err := row.Scan(
		&i.ID,
		&i.RestaurantID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.MinThreshold,
		&i.CostPerUnit,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getIngredient = `-- name: GetIngredient :one
SELECT id, restaurant_id, name, unit, quantity, min_threshold, cost_per_unit, created_at, updated_at
FROM ingredients
WHERE id = $1 AND restaurant_id = $2
`

type GetIngredientParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetIngredient(ctx context.Context, arg GetIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, getIngredient, arg.ID, arg.RestaurantID)
	var i Ingredient
	err := row.Scan(
		&i.ID,
		&i.RestaurantID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.MinThreshold,
		&i.CostPerUnit,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listIngredientsByRestaurant = `-- name: ListIngredientsByRestaurant :many
SELECT id, restaurant_id, name, unit, quantity, min_threshold, cost_per_unit, created_at, updated_at
FROM ingredients
WHERE restaurant_id = $1
ORDER BY name
`

func (q *Queries) ListIngredientsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listIngredientsByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(
			&i.ID,
			&i.RestaurantID,
			&i.Name,
			&i.Unit,
			&i.Quantity,
			&i.MinThreshold,
			&i.CostPerUnit,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const listLowStockIngredients = `-- name: ListLowStockIngredients :many
SELECT id, restaurant_id, name, unit, quantity, min_threshold, cost_per_unit, created_at, updated_at
FROM ingredients
WHERE restaurant_id = $1 AND quantity <= min_threshold
ORDER BY name
`

func (q *Queries) ListLowStockIngredients(ctx context.Context, restaurantID uuid.UUID) ([]Ingredient, error) {
	rows, err := q.db.Query(ctx, listLowStockIngredients, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ingredient
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(
			&i.ID,
			&i.RestaurantID,
			&i.Name,
			&i.Unit,
			&i.Quantity,
			&i.MinThreshold,
			&i.CostPerUnit,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateIngredient = `-- name: UpdateIngredient :one
UPDATE ingredients
SET name = $3, unit = $4, min_threshold = $5, cost_per_unit = $6, updated_at = now()
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, name, unit, quantity, min_threshold, cost_per_unit, created_at, updated_at
`

type UpdateIngredientParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Unit         string
	MinThreshold pgtype.Numeric
	CostPerUnit  pgtype.Numeric
}

func (q *Queries) UpdateIngredient(ctx context.Context, arg UpdateIngredientParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, updateIngredient,
		arg.ID,
		arg.RestaurantID,
		arg.Name,
		arg.Unit,
		arg.MinThreshold,
		arg.CostPerUnit,
	)
	var i Ingredient
	err := row.Scan(
		&i.ID,
		&i.RestaurantID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.MinThreshold,
		&i.CostPerUnit,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteIngredient = `-- name: DeleteIngredient :one
DELETE FROM ingredients
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeleteIngredientParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeleteIngredient(ctx context.Context, arg DeleteIngredientParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteIngredient, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const adjustIngredientQuantity = `-- name: AdjustIngredientQuantity :one
UPDATE ingredients
SET quantity = quantity + $3, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND quantity + $3 >= 0
RETURNING id, restaurant_id, name, unit, quantity, min_threshold, cost_per_unit, created_at, updated_at
`

type AdjustIngredientQuantityParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Delta        pgtype.Numeric
}

// AdjustIngredientQuantity applies a signed delta as a single guarded update.
// Returns pgx.ErrNoRows when the ingredient is missing or the delta would
// drive the quantity negative; concurrent adjustments serialize on the row.
func (q *Queries) AdjustIngredientQuantity(ctx context.Context, arg AdjustIngredientQuantityParams) (Ingredient, error) {
	row := q.db.QueryRow(ctx, adjustIngredientQuantity, arg.ID, arg.RestaurantID, arg.Delta)
	var i Ingredient
	err := row.Scan(
		&i.ID,
		&i.RestaurantID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.MinThreshold,
		&i.CostPerUnit,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createInventoryTransaction = `-- name: CreateInventoryTransaction :one
INSERT INTO inventory_transactions (restaurant_id, ingredient_id, delta, reason, order_id, note)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, restaurant_id, ingredient_id, delta, reason, order_id, note, created_at
`

type CreateInventoryTransactionParams struct {
	RestaurantID uuid.UUID
	IngredientID uuid.UUID
	Delta        pgtype.Numeric
	Reason       TransactionReason
	OrderID      pgtype.UUID
	Note         pgtype.Text
}

func (q *Queries) CreateInventoryTransaction(ctx context.Context, arg CreateInventoryTransactionParams) (InventoryTransaction, error) {
	row := q.db.QueryRow(ctx, createInventoryTransaction,
		arg.RestaurantID,
		arg.IngredientID,
		arg.Delta,
		arg.Reason,
		arg.OrderID,
		arg.Note,
	)
	var t InventoryTransaction
	err := row.Scan(
		&t.ID,
		&t.RestaurantID,
		&t.IngredientID,
		&t.Delta,
		&t.Reason,
		&t.OrderID,
		&t.Note,
		&t.CreatedAt,
	)
	return t, err
}

const listTransactionsByIngredient = `-- name: ListTransactionsByIngredient :many
SELECT id, restaurant_id, ingredient_id, delta, reason, order_id, note, created_at
FROM inventory_transactions
WHERE ingredient_id = $1 AND restaurant_id = $2
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListTransactionsByIngredientParams struct {
	IngredientID uuid.UUID
	RestaurantID uuid.UUID
	Limit        int32
	Offset       int32
}

func (q *Queries) ListTransactionsByIngredient(ctx context.Context, arg ListTransactionsByIngredientParams) ([]InventoryTransaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByIngredient,
		arg.IngredientID,
		arg.RestaurantID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InventoryTransaction
	for rows.Next() {
		var t InventoryTransaction
		if err := rows.Scan(
			&t.ID,
			&t.RestaurantID,
			&t.IngredientID,
			&t.Delta,
			&t.Reason,
			&t.OrderID,
			&t.Note,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const countIngredientsByRestaurant = `-- name: CountIngredientsByRestaurant :one
SELECT count(*)
FROM ingredients
WHERE restaurant_id = $1 AND id = ANY($2::uuid[])
`

type CountIngredientsByRestaurantParams struct {
	RestaurantID uuid.UUID
	IDs          []uuid.UUID
}

func (q *Queries) CountIngredientsByRestaurant(ctx context.Context, arg CountIngredientsByRestaurantParams) (int64, error) {
	row := q.db.QueryRow(ctx, countIngredientsByRestaurant, arg.RestaurantID, arg.IDs)
	var count int64
	err := row.Scan(&count)
	return count, err
}
