package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createDiscount = `-- name: CreateDiscount :one
INSERT INTO discounts (restaurant_id, name, apply_to, target_category, target_item_id, discount_type, value, is_active, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, restaurant_id, name, apply_to, target_category, target_item_id, discount_type, value, is_active, starts_at, ends_at, created_at
`

type CreateDiscountParams struct {
	RestaurantID   uuid.UUID
	Name           string
	ApplyTo        DiscountScope
	TargetCategory pgtype.Text
	TargetItemID   pgtype.UUID
	DiscountType   DiscountType
	Value          pgtype.Numeric
	IsActive       bool
	StartsAt       pgtype.Timestamptz
	EndsAt         pgtype.Timestamptz
}

func (q *Queries) CreateDiscount(ctx context.Context, arg CreateDiscountParams) (Discount, error) {
	row := q.db.QueryRow(ctx, createDiscount,
		arg.RestaurantID,
		arg.Name,
		arg.ApplyTo,
		arg.TargetCategory,
		arg.TargetItemID,
		arg.DiscountType,
		arg.Value,
		arg.IsActive,
		arg.StartsAt,
		arg.EndsAt,
	)
	return scanDiscount(row)
}

const getDiscount = `-- name: GetDiscount :one
SELECT id, restaurant_id, name, apply_to, target_category, target_item_id, discount_type, value, is_active, starts_at, ends_at, created_at
FROM discounts
WHERE id = $1 AND restaurant_id = $2
`

type GetDiscountParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetDiscount(ctx context.Context, arg GetDiscountParams) (Discount, error) {
	return scanDiscount(q.db.QueryRow(ctx, getDiscount, arg.ID, arg.RestaurantID))
}

const listDiscountsByRestaurant = `-- name: ListDiscountsByRestaurant :many
SELECT id, restaurant_id, name, apply_to, target_category, target_item_id, discount_type, value, is_active, starts_at, ends_at, created_at
FROM discounts
WHERE restaurant_id = $1
ORDER BY created_at
`

func (q *Queries) ListDiscountsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Discount, error) {
	return q.listDiscounts(ctx, listDiscountsByRestaurant, restaurantID)
}

const listActiveDiscountsByRestaurant = `-- name: ListActiveDiscountsByRestaurant :many
SELECT id, restaurant_id, name, apply_to, target_category, target_item_id, discount_type, value, is_active, starts_at, ends_at, created_at
FROM discounts
WHERE restaurant_id = $1 AND is_active = TRUE
ORDER BY created_at
`

// ListActiveDiscountsByRestaurant returns active-flagged discounts in
// creation order. Time-window eligibility is evaluated by the selector, not
// here, so a preview and a placement can share one evaluation timestamp.
func (q *Queries) ListActiveDiscountsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Discount, error) {
	return q.listDiscounts(ctx, listActiveDiscountsByRestaurant, restaurantID)
}

const updateDiscount = `-- name: UpdateDiscount :one
UPDATE discounts
SET name = $3, apply_to = $4, target_category = $5, target_item_id = $6, discount_type = $7, value = $8, is_active = $9, starts_at = $10, ends_at = $11
WHERE id = $1 AND restaurant_id = $2
RETURNING id, restaurant_id, name, apply_to, target_category, target_item_id, discount_type, value, is_active, starts_at, ends_at, created_at
`

type UpdateDiscountParams struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Name           string
	ApplyTo        DiscountScope
	TargetCategory pgtype.Text
	TargetItemID   pgtype.UUID
	DiscountType   DiscountType
	Value          pgtype.Numeric
	IsActive       bool
	StartsAt       pgtype.Timestamptz
	EndsAt         pgtype.Timestamptz
}

func (q *Queries) UpdateDiscount(ctx context.Context, arg UpdateDiscountParams) (Discount, error) {
	row := q.db.QueryRow(ctx, updateDiscount,
		arg.ID,
		arg.RestaurantID,
		arg.Name,
		arg.ApplyTo,
		arg.TargetCategory,
		arg.TargetItemID,
		arg.DiscountType,
		arg.Value,
		arg.IsActive,
		arg.StartsAt,
		arg.EndsAt,
	)
	return scanDiscount(row)
}

const deleteDiscount = `-- name: DeleteDiscount :one
DELETE FROM discounts
WHERE id = $1 AND restaurant_id = $2
RETURNING id
`

type DeleteDiscountParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) DeleteDiscount(ctx context.Context, arg DeleteDiscountParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteDiscount, arg.ID, arg.RestaurantID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

func (q *Queries) listDiscounts(ctx context.Context, query string, restaurantID uuid.UUID) ([]Discount, error) {
	rows, err := q.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Discount
	for rows.Next() {
		var d Discount
		if err := rows.Scan(
			&d.ID,
			&d.RestaurantID,
			&d.Name,
			&d.ApplyTo,
			&d.TargetCategory,
			&d.TargetItemID,
			&d.DiscountType,
			&d.Value,
			&d.IsActive,
			&d.StartsAt,
			&d.EndsAt,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func scanDiscount(row interface{ Scan(dest ...interface{}) error }) (Discount, error) {
	var d Discount
	err := row.Scan(
		&d.ID,
		&d.RestaurantID,
		&d.Name,
		&d.ApplyTo,
		&d.TargetCategory,
		&d.TargetItemID,
		&d.DiscountType,
		&d.Value,
		&d.IsActive,
		&d.StartsAt,
		&d.EndsAt,
		&d.CreatedAt,
	)
	return d, err
}
