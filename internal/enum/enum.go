package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPreparing = "PREPARING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	TxReasonRestock          = "RESTOCK"
	TxReasonAdjustment       = "ADJUSTMENT"
	TxReasonOrderConsumption = "ORDER_CONSUMPTION"
)

// ── Group B: Roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleOwner   = "OWNER"
	UserRoleKitchen = "KITCHEN"
)

// ── Group C: Discount configuration (CHECK constrained in DB) ──

const (
	DiscountScopeAll      = "ALL"
	DiscountScopeCategory = "CATEGORY"
	DiscountScopeItem     = "ITEM"
)

const (
	DiscountTypeFixed      = "FIXED"
	DiscountTypePercentage = "PERCENTAGE"
)

// ── Group D: Operational policy (configurable, no DB constraint) ──

// Point in the order lifecycle at which ingredients are drawn from the ledger.
const (
	ConsumeOnPlacement = "PLACEMENT"
	ConsumeOnPreparing = "PREPARING"
)
