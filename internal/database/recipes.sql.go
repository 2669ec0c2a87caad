package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const deleteRecipeForMenuItem = `-- name: DeleteRecipeForMenuItem :exec
DELETE FROM menu_item_ingredients
WHERE menu_item_id = $1
`

func (q *Queries) DeleteRecipeForMenuItem(ctx context.Context, menuItemID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteRecipeForMenuItem, menuItemID)
	return err
}

const createRecipeRow = `-- name: CreateRecipeRow :one
INSERT INTO menu_item_ingredients (menu_item_id, ingredient_id, quantity_per_item)
VALUES ($1, $2, $3)
RETURNING menu_item_id, ingredient_id, quantity_per_item
`

type CreateRecipeRowParams struct {
	MenuItemID      uuid.UUID
	IngredientID    uuid.UUID
	QuantityPerItem pgtype.Numeric
}

func (q *Queries) CreateRecipeRow(ctx context.Context, arg CreateRecipeRowParams) (MenuItemIngredient, error) {
	row := q.db.QueryRow(ctx, createRecipeRow, arg.MenuItemID, arg.IngredientID, arg.QuantityPerItem)
	var r MenuItemIngredient
	err := row.Scan(&r.MenuItemID, &r.IngredientID, &r.QuantityPerItem)
	return r, err
}

const listRecipeForMenuItem = `-- name: ListRecipeForMenuItem :many
SELECT mii.menu_item_id, mii.ingredient_id, mii.quantity_per_item, i.name AS ingredient_name, i.unit
FROM menu_item_ingredients mii
JOIN ingredients i ON i.id = mii.ingredient_id
WHERE mii.menu_item_id = $1
ORDER BY i.name
`

type ListRecipeForMenuItemRow struct {
	MenuItemID      uuid.UUID
	IngredientID    uuid.UUID
	QuantityPerItem pgtype.Numeric
	IngredientName  string
	Unit            string
}

func (q *Queries) ListRecipeForMenuItem(ctx context.Context, menuItemID uuid.UUID) ([]ListRecipeForMenuItemRow, error) {
	rows, err := q.db.Query(ctx, listRecipeForMenuItem, menuItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListRecipeForMenuItemRow
	for rows.Next() {
		var r ListRecipeForMenuItemRow
		if err := rows.Scan(&r.MenuItemID, &r.IngredientID, &r.QuantityPerItem, &r.IngredientName, &r.Unit); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listRecipeRowsForMenuItems = `-- name: ListRecipeRowsForMenuItems :many
SELECT menu_item_id, ingredient_id, quantity_per_item
FROM menu_item_ingredients
WHERE menu_item_id = ANY($1::uuid[])
`

func (q *Queries) ListRecipeRowsForMenuItems(ctx context.Context, menuItemIDs []uuid.UUID) ([]MenuItemIngredient, error) {
	rows, err := q.db.Query(ctx, listRecipeRowsForMenuItems, menuItemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItemIngredient
	for rows.Next() {
		var r MenuItemIngredient
		if err := rows.Scan(&r.MenuItemID, &r.IngredientID, &r.QuantityPerItem); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
