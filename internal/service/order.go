package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/savoro-pos/api/internal/database"
	"github.com/savoro-pos/api/internal/enum"
	"github.com/savoro-pos/api/internal/pricing"
)

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidTransition     = errors.New("transition not allowed")
	ErrStatusConflict        = errors.New("order status changed concurrently")
	ErrOrderAlreadyCancelled = errors.New("order already cancelled")
	ErrCannotCancelCompleted = errors.New("completed orders cannot be cancelled")
)

// allowedTransitions is the order state machine. COMPLETED and CANCELLED
// are terminal.
var allowedTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPENDING:   {database.OrderStatusPREPARING, database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED},
	database.OrderStatusPREPARING: {database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED},
}

func transitionAllowed(from, to database.OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderStore defines the DB methods order placement and lifecycle need.
// Satisfied by *database.Queries.
type OrderStore interface {
	PricingStore
	inventoryConsumer
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService owns order placement and the order state machine.
type OrderService struct {
	pool      DB
	newStore  NewOrderStore
	consumeOn string // enum.ConsumeOnPlacement or enum.ConsumeOnPreparing
}

func NewOrderService(pool DB, newStore NewOrderStore, consumeOn string) *OrderService {
	return &OrderService{pool: pool, newStore: newStore, consumeOn: consumeOn}
}

// PlaceOrderRequest is a customer's order submission from a table.
type PlaceOrderRequest struct {
	TableID      string
	CustomerNote string
	Items        []CartItemInput
}

// OrderDetail pairs an order row with its frozen line items.
type OrderDetail struct {
	Order database.Order
	Items []database.OrderItem
}

// PlaceOrder prices the cart, persists the order with frozen line prices
// and settled totals, and draws down ingredient stock when the consumption
// policy is PLACEMENT. Everything runs in one transaction, so an order with
// insufficient stock leaves no trace.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderDetail, error) {
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		return nil, ErrInvalidTableID
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	table, err := store.GetActiveTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	quote, err := priceCart(ctx, store, table, req.Items, time.Now())
	if err != nil {
		return nil, err
	}

	customerNote := pgtype.Text{}
	if req.CustomerNote != "" {
		customerNote = pgtype.Text{String: req.CustomerNote, Valid: true}
	}

	discountID := pgtype.UUID{}
	if quote.Discount.Applied != nil {
		discountID = pgtype.UUID{Bytes: quote.Discount.Applied.DiscountID, Valid: true}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		RestaurantID:     table.RestaurantID,
		TableID:          table.ID,
		CustomerNote:     customerNote,
		Subtotal:         decimalToNumeric(quote.Subtotal),
		DiscountID:       discountID,
		DiscountAmount:   decimalToNumeric(quote.Discount.Amount),
		VatAmount:        decimalToNumeric(quote.Totals.VatAmount),
		TipAmount:        decimalToNumeric(quote.Totals.TipAmount),
		TotalAmount:      decimalToNumeric(quote.Totals.Total),
		CommissionRate:   decimalToNumeric(quote.Totals.CommissionRate),
		CommissionAmount: decimalToNumeric(quote.Totals.CommissionAmount),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	items := make([]database.OrderItem, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		item, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:    order.ID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Category:   line.Category,
			UnitPrice:  decimalToNumeric(line.UnitPrice),
			Quantity:   line.Quantity,
			Subtotal:   decimalToNumeric(line.Subtotal),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		items = append(items, item)
	}

	if s.consumeOn == enum.ConsumeOnPlacement {
		if err := consumeForOrder(ctx, store, table.RestaurantID, order.ID, quoteLines(quote)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("restaurant_id", order.RestaurantID.String()).
		Str("total", quote.Totals.Total.String()).
		Msg("order placed")

	return &OrderDetail{Order: order, Items: items}, nil
}

func quoteLines(q *Quote) []consumedLine {
	lines := make([]consumedLine, 0, len(q.Lines))
	for _, l := range q.Lines {
		lines = append(lines, consumedLine{MenuItemID: l.MenuItemID, Quantity: l.Quantity})
	}
	return lines
}

// AdvanceStatus moves an order forward through the state machine. The
// update is conditional on the status the service just observed, so two
// staff devices racing on the same order cannot both win. Under the
// PREPARING consumption policy, the first transition out of PENDING draws
// down stock in the same transaction.
func (s *OrderService) AdvanceStatus(ctx context.Context, restaurantID, orderID uuid.UUID, target string) (*OrderDetail, error) {
	targetStatus := database.OrderStatus(target)
	switch targetStatus {
	case database.OrderStatusPREPARING, database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED:
	default:
		return nil, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !transitionAllowed(order.Status, targetStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, targetStatus, ErrInvalidTransition)
	}

	if s.consumeOn == enum.ConsumeOnPreparing &&
		order.Status == database.OrderStatusPENDING &&
		targetStatus != database.OrderStatusCANCELLED {
		items, err := store.ListOrderItemsByOrder(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("list order items: %w", err)
		}
		lines := make([]consumedLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, consumedLine{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
		}
		if err := consumeForOrder(ctx, store, restaurantID, order.ID, lines); err != nil {
			return nil, err
		}
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:           orderID,
		RestaurantID: restaurantID,
		Status:       targetStatus,
		Status_2:     order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Another writer moved the order between our read and update.
			return nil, ErrStatusConflict
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	items, err := store.ListOrderItemsByOrder(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	log.Info().
		Str("order_id", updated.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(updated.Status)).
		Msg("order status updated")

	return &OrderDetail{Order: updated, Items: items}, nil
}

// Cancel cancels an order unless it already reached a terminal state. The
// guarded update only matches PENDING or PREPARING rows; on a miss the
// follow-up read tells a missing order apart from a terminal one. Cancelled
// orders do not restock consumed ingredients.
func (s *OrderService) Cancel(ctx context.Context, restaurantID, orderID uuid.UUID) (*OrderDetail, error) {
	store := s.newStore(s.pool)
	return cancelOrder(ctx, store, restaurantID, orderID)
}

func cancelOrder(ctx context.Context, store OrderStore, restaurantID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := store.CancelOrder(ctx, database.CancelOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cancel order: %w", err)
		}
		existing, getErr := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
		if getErr != nil {
			if errors.Is(getErr, pgx.ErrNoRows) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("get order: %w", getErr)
		}
		if existing.Status == database.OrderStatusCANCELLED {
			return nil, ErrOrderAlreadyCancelled
		}
		return nil, ErrCannotCancelCompleted
	}

	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Msg("order cancelled")

	return &OrderDetail{Order: order, Items: items}, nil
}

// GetOrder fetches one order with its line items.
func (s *OrderService) GetOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*OrderDetail, error) {
	store := s.newStore(s.pool)

	order, err := store.GetOrder(ctx, database.GetOrderParams{ID: orderID, RestaurantID: restaurantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	return &OrderDetail{Order: order, Items: items}, nil
}

// ListOrdersRequest filters and pages the order list.
type ListOrdersRequest struct {
	RestaurantID uuid.UUID
	Status       string // optional
	Limit        int32
	Offset       int32
}

// ListOrders returns a restaurant's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, req ListOrdersRequest) ([]database.Order, error) {
	status := database.NullOrderStatus{}
	if req.Status != "" {
		switch st := database.OrderStatus(req.Status); st {
		case database.OrderStatusPENDING, database.OrderStatusPREPARING,
			database.OrderStatusCOMPLETED, database.OrderStatusCANCELLED:
			status = database.NullOrderStatus{OrderStatus: st, Valid: true}
		default:
			return nil, ErrInvalidStatus
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	} else if limit > 100 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	store := s.newStore(s.pool)
	orders, err := store.ListOrders(ctx, database.ListOrdersParams{
		RestaurantID: req.RestaurantID,
		Status:       status,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Totals re-derives totals from a persisted order's stored amounts, for
// responses that need decimals instead of raw numerics.
func OrderTotals(o database.Order) pricing.Totals {
	return pricing.Totals{
		Subtotal:         numericToDecimal(o.Subtotal).Sub(numericToDecimal(o.DiscountAmount)),
		VatAmount:        numericToDecimal(o.VatAmount),
		TipAmount:        numericToDecimal(o.TipAmount),
		Total:            numericToDecimal(o.TotalAmount),
		CommissionRate:   numericToDecimal(o.CommissionRate),
		CommissionAmount: numericToDecimal(o.CommissionAmount),
	}
}
