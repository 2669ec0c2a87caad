package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (restaurant_id, table_id, customer_note, subtotal, discount_id, discount_amount, vat_amount, tip_amount, total_amount, commission_rate, commission_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, restaurant_id, table_id, status, customer_note, subtotal, discount_id, discount_amount, vat_amount, tip_amount, total_amount, commission_rate, commission_amount, created_at, updated_at
`

type CreateOrderParams struct {
	RestaurantID     uuid.UUID
	TableID          uuid.UUID
	CustomerNote     pgtype.Text
	Subtotal         pgtype.Numeric
	DiscountID       pgtype.UUID
	DiscountAmount   pgtype.Numeric
	VatAmount        pgtype.Numeric
	TipAmount        pgtype.Numeric
	TotalAmount      pgtype.Numeric
	CommissionRate   pgtype.Numeric
	CommissionAmount pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.RestaurantID,
		arg.TableID,
		arg.CustomerNote,
		arg.Subtotal,
		arg.DiscountID,
		arg.DiscountAmount,
		arg.VatAmount,
		arg.TipAmount,
		arg.TotalAmount,
		arg.CommissionRate,
		arg.CommissionAmount,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, name, category, unit_price, quantity, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, menu_item_id, name, category, unit_price, quantity, subtotal
`

type CreateOrderItemParams struct {
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Category   string
	UnitPrice  pgtype.Numeric
	Quantity   int32
	Subtotal   pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.Name,
		arg.Category,
		arg.UnitPrice,
		arg.Quantity,
		arg.Subtotal,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.Name,
		&i.Category,
		&i.UnitPrice,
		&i.Quantity,
		&i.Subtotal,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, restaurant_id, table_id, status, customer_note, subtotal, discount_id, discount_amount, vat_amount, tip_amount, total_amount, commission_rate, commission_amount, created_at, updated_at
FROM orders
WHERE id = $1 AND restaurant_id = $2
`

type GetOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.RestaurantID))
}

const listOrders = `-- name: ListOrders :many
SELECT id, restaurant_id, table_id, status, customer_note, subtotal, discount_id, discount_amount, vat_amount, tip_amount, total_amount, commission_rate, commission_amount, created_at, updated_at
FROM orders
WHERE restaurant_id = $1
  AND ($2::order_status IS NULL OR status = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`

type ListOrdersParams struct {
	RestaurantID uuid.UUID
	Status       NullOrderStatus
	Limit        int32
	Offset       int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	var status interface{}
	if arg.Status.Valid {
		status = arg.Status.OrderStatus
	}
	rows, err := q.db.Query(ctx, listOrders, arg.RestaurantID, status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

const listOrderItemsByOrder = `-- name: ListOrderItemsByOrder :many
SELECT id, order_id, menu_item_id, name, category, unit_price, quantity, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY name
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.MenuItemID,
			&i.Name,
			&i.Category,
			&i.UnitPrice,
			&i.Quantity,
			&i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND status = $4
RETURNING id, restaurant_id, table_id, status, customer_note, subtotal, discount_id, discount_amount, vat_amount, tip_amount, total_amount, commission_rate, commission_amount, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Status       OrderStatus
	Status_2     OrderStatus
}

// UpdateOrderStatus commits a transition only if the row still holds the
// status the caller observed. pgx.ErrNoRows signals a lost race.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.RestaurantID, arg.Status, arg.Status_2))
}

const cancelOrder = `-- name: CancelOrder :one
UPDATE orders
SET status = 'CANCELLED', updated_at = now()
WHERE id = $1 AND restaurant_id = $2 AND status IN ('PENDING', 'PREPARING')
RETURNING id, restaurant_id, table_id, status, customer_note, subtotal, discount_id, discount_amount, vat_amount, tip_amount, total_amount, commission_rate, commission_amount, created_at, updated_at
`

type CancelOrderParams struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
}

// CancelOrder enforces the terminal-state guard in the UPDATE itself:
// a racing completion makes this return pgx.ErrNoRows instead of
// overwriting a COMPLETED order.
func (q *Queries) CancelOrder(ctx context.Context, arg CancelOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, cancelOrder, arg.ID, arg.RestaurantID))
}

func scanOrder(row interface{ Scan(dest ...interface{}) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.RestaurantID,
		&o.TableID,
		&o.Status,
		&o.CustomerNote,
		&o.Subtotal,
		&o.DiscountID,
		&o.DiscountAmount,
		&o.VatAmount,
		&o.TipAmount,
		&o.TotalAmount,
		&o.CommissionRate,
		&o.CommissionAmount,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}
