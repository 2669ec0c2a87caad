package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (restaurant_id, name, category, price, is_available)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, restaurant_id, name, category, price, is_available, created_at, updated_at, deleted_at
`

type CreateMenuItemParams struct {
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        pgtype.Numeric
	IsAvailable  bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.RestaurantID,
		arg.Name,
		arg.Category,
		arg.Price,
		arg.IsAvailable,
	)
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.RestaurantID,
		&m.Name,
		&m.Category,
		&m.Price,
		&m.IsAvailable,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	return m, err
}

const getMenuItem = `-- name: GetMenuItem :one
SELECT id, restaurant_id, name, category, price, is_available, created_at, updated_at, deleted_at
FROM menu_items
WHERE id = $1 AND restaurant_id = $2 AND deleted_at IS NULL
`

type GetMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetMenuItem(ctx context.Context, arg GetMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, arg.ID, arg.RestaurantID)
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.RestaurantID,
		&m.Name,
		&m.Category,
		&m.Price,
		&m.IsAvailable,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	return m, err
}

const getMenuItemsByIDs = `-- name: GetMenuItemsByIDs :many
SELECT id, restaurant_id, name, category, price, is_available, created_at, updated_at, deleted_at
FROM menu_items
WHERE restaurant_id = $1 AND id = ANY($2::uuid[]) AND deleted_at IS NULL
`

type GetMenuItemsByIDsParams struct {
	RestaurantID uuid.UUID
	IDs          []uuid.UUID
}

func (q *Queries) GetMenuItemsByIDs(ctx context.Context, arg GetMenuItemsByIDsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, getMenuItemsByIDs, arg.RestaurantID, arg.IDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(
			&m.ID,
			&m.RestaurantID,
			&m.Name,
			&m.Category,
			&m.Price,
			&m.IsAvailable,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const listMenuItemsByRestaurant = `-- name: ListMenuItemsByRestaurant :many
SELECT id, restaurant_id, name, category, price, is_available, created_at, updated_at, deleted_at
FROM menu_items
WHERE restaurant_id = $1 AND deleted_at IS NULL
ORDER BY category, name
`

func (q *Queries) ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(
			&m.ID,
			&m.RestaurantID,
			&m.Name,
			&m.Category,
			&m.Price,
			&m.IsAvailable,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.DeletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET name = $3, category = $4, price = $5, is_available = $6, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND deleted_at IS NULL
RETURNING id, restaurant_id, name, category, price, is_available, created_at, updated_at, deleted_at
`

type UpdateMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        pgtype.Numeric
	IsAvailable  bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.RestaurantID,
		arg.Name,
		arg.Category,
		arg.Price,
		arg.IsAvailable,
	)
	var m MenuItem
	err := row.Scan(
		&m.ID,
		&m.RestaurantID,
		&m.Name,
		&m.Category,
		&m.Price,
		&m.IsAvailable,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	return m, err
}

const softDeleteMenuItem = `-- name: SoftDeleteMenuItem :one
UPDATE menu_items
SET deleted_at = now(), is_available = FALSE, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND deleted_at IS NULL
RETURNING id
`

type SoftDeleteMenuItemParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) SoftDeleteMenuItem(ctx context.Context, arg SoftDeleteMenuItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteMenuItem, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
