package database

import (
	"context"

	"github.com/google/uuid"
)

const createTable = `-- name: CreateTable :one
INSERT INTO restaurant_tables (restaurant_id, label)
VALUES ($1, $2)
RETURNING id, restaurant_id, label, is_active, created_at
`

type CreateTableParams struct {
	RestaurantID uuid.UUID
	Label        string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, createTable, arg.RestaurantID, arg.Label)
	var t RestaurantTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.IsActive, &t.CreatedAt)
	return t, err
}

const getActiveTable = `-- name: GetActiveTable :one
SELECT id, restaurant_id, label, is_active, created_at
FROM restaurant_tables
WHERE id = $1 AND is_active = TRUE
`

// GetActiveTable resolves a customer-facing table reference to its owning
// restaurant. Inactive tables are invisible to the public ordering flow.
func (q *Queries) GetActiveTable(ctx context.Context, id uuid.UUID) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, getActiveTable, id)
	var t RestaurantTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.IsActive, &t.CreatedAt)
	return t, err
}

const listTablesByRestaurant = `-- name: ListTablesByRestaurant :many
SELECT id, restaurant_id, label, is_active, created_at
FROM restaurant_tables
WHERE restaurant_id = $1
ORDER BY label
`

func (q *Queries) ListTablesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]RestaurantTable, error) {
	rows, err := q.db.Query(ctx, listTablesByRestaurant, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RestaurantTable
	for rows.Next() {
		var t RestaurantTable
		if err := rows.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTable = `-- name: UpdateTable :one
UPDATE restaurant_tables
SET label = $3, is_active = $4
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, label, is_active, created_at
`

type UpdateTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Label        string
	IsActive     bool
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (RestaurantTable, error) {
	row := q.db.QueryRow(ctx, updateTable, arg.ID, arg.RestaurantID, arg.Label, arg.IsActive)
	var t RestaurantTable
	err := row.Scan(&t.ID, &t.RestaurantID, &t.Label, &t.IsActive, &t.CreatedAt)
	return t, err
}

const deleteTable = `-- name: DeleteTable :one
UPDATE restaurant_tables
SET is_active = FALSE
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeleteTableParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeleteTable(ctx context.Context, arg DeleteTableParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteTable, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}
