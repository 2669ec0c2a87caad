package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderStatus string

const (
	OrderStatusPENDING   OrderStatus = "PENDING"
	OrderStatusPREPARING OrderStatus = "PREPARING"
	OrderStatusCOMPLETED OrderStatus = "COMPLETED"
	OrderStatusCANCELLED OrderStatus = "CANCELLED"
)

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool
}

type TransactionReason string

const (
	TransactionReasonRESTOCK          TransactionReason = "RESTOCK"
	TransactionReasonADJUSTMENT       TransactionReason = "ADJUSTMENT"
	TransactionReasonORDERCONSUMPTION TransactionReason = "ORDER_CONSUMPTION"
)

type DiscountScope string

const (
	DiscountScopeALL      DiscountScope = "ALL"
	DiscountScopeCATEGORY DiscountScope = "CATEGORY"
	DiscountScopeITEM     DiscountScope = "ITEM"
)

type DiscountType string

const (
	DiscountTypeFIXED      DiscountType = "FIXED"
	DiscountTypePERCENTAGE DiscountType = "PERCENTAGE"
)

type UserRole string

const (
	UserRoleADMIN   UserRole = "ADMIN"
	UserRoleOWNER   UserRole = "OWNER"
	UserRoleKITCHEN UserRole = "KITCHEN"
)

type Restaurant struct {
	ID        uuid.UUID
	Name      string
	Address   pgtype.Text
	IsActive  bool
	CreatedAt time.Time
}

type User struct {
	ID             uuid.UUID
	RestaurantID   uuid.UUID
	Email          string
	HashedPassword string
	FullName       string
	Role           UserRole
	IsActive       bool
	CreatedAt      time.Time
}

type RestaurantTable struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Label        string
	IsActive     bool
	CreatedAt    time.Time
}

type MenuItem struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Category     string
	Price        pgtype.Numeric
	IsAvailable  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    pgtype.Timestamptz
}

type Discount struct {
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
	CreatedAt      time.Time
}

type Ingredient struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Name         string
	Unit         string
	Quantity     pgtype.Numeric
	MinThreshold pgtype.Numeric
	CostPerUnit  pgtype.Numeric
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItemIngredient struct {
	MenuItemID      uuid.UUID
	IngredientID    uuid.UUID
	QuantityPerItem pgtype.Numeric
}

type InventoryTransaction struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	IngredientID uuid.UUID
	Delta        pgtype.Numeric
	Reason       TransactionReason
	OrderID      pgtype.UUID
	Note         pgtype.Text
	CreatedAt    time.Time
}

type Order struct {
	ID               uuid.UUID
	RestaurantID     uuid.UUID
	TableID          uuid.UUID
	Status           OrderStatus
	CustomerNote     pgtype.Text
	Subtotal         pgtype.Numeric
	DiscountID       pgtype.UUID
	DiscountAmount   pgtype.Numeric
	VatAmount        pgtype.Numeric
	TipAmount        pgtype.Numeric
	TotalAmount      pgtype.Numeric
	CommissionRate   pgtype.Numeric
	CommissionAmount pgtype.Numeric
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	MenuItemID uuid.UUID
	Name       string
	Category   string
	UnitPrice  pgtype.Numeric
	Quantity   int32
	Subtotal   pgtype.Numeric
}
