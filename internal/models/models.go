package models

import (
	"time"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/google/uuid"
)

// Member is a depositor account. Rows are created and maintained by the
// external member-management system; only the balance column is written here.
type Member struct {
	ID        uuid.UUID `json:"id"`
	UnitID    uuid.UUID `json:"unit_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Blocked   bool      `json:"blocked"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Actor identifies who is performing a ledger operation, derived from the
// authenticated session by the HTTP layer.
type Actor struct {
	ID     uuid.UUID
	Role   string
	UnitID uuid.UUID
}

// IsAdmin reports whether the actor bypasses unit scoping.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// CatalogItem is a read-only view of the external price catalog, resolved for
// one unit. LocalPrice is nil when the unit has no override.
type CatalogItem struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	BasePrice  int64     `json:"base_price"`
	LowerBound int64     `json:"lower_bound"`
	UpperBound int64     `json:"upper_bound"`
	LocalPrice *int64    `json:"local_price,omitempty"`
}

// DepositLineItem is one priced row of a deposit batch. ItemName is a
// snapshot taken at write time so history survives catalog renames.
type DepositLineItem struct {
	ID            uuid.UUID          `json:"line_id"`
	GroupID       string             `json:"group_id"`
	CatalogItemID uuid.UUID          `json:"catalog_item_id"`
	ItemName      string             `json:"item_name_snapshot"`
	Weight        domain.Weight      `json:"weight"`
	PricingMode   domain.PricingMode `json:"pricing_mode"`
	UnitPrice     int64              `json:"unit_price"`
	LineTotal     int64              `json:"line_total"`
	WasteSource   domain.WasteSource `json:"waste_source"`
	CreatedAt     time.Time          `json:"created_at"`
}

// DepositBatch is a committed multi-item deposit sharing one group id.
type DepositBatch struct {
	GroupID     string             `json:"group_id"`
	MemberID    uuid.UUID          `json:"member_id"`
	ActorID     uuid.UUID          `json:"actor_id"`
	PaymentMode domain.PaymentMode `json:"payment_mode"`
	TotalAmount int64              `json:"total_amount"`
	Note        string             `json:"note,omitempty"`
	LineItems   []DepositLineItem  `json:"line_items"`
	CreatedAt   time.Time          `json:"created_at"`
}

// WithdrawalRecord is one committed balance debit.
type WithdrawalRecord struct {
	ID               uuid.UUID `json:"withdrawal_id"`
	MemberID         uuid.UUID `json:"member_id"`
	ActorID          uuid.UUID `json:"actor_id"`
	Amount           int64     `json:"amount"`
	Note             string    `json:"note,omitempty"`
	Status           string    `json:"status"`
	RemainingBalance int64     `json:"remaining_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

// LedgerEntry is a unified statement row over deposits and withdrawals.
type LedgerEntry struct {
	Kind      string    `json:"kind"` // "deposit" or "withdrawal"
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
