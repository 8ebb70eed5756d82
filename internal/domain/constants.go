package domain

// PricingMode selects how a deposit line item is priced.
type PricingMode string

const (
	PricingSystem PricingMode = "SYSTEM"
	PricingLocal  PricingMode = "LOCAL"
	PricingCustom PricingMode = "CUSTOM"
)

// Valid reports whether the mode is one of the closed set.
func (m PricingMode) Valid() bool {
	switch m {
	case PricingSystem, PricingLocal, PricingCustom:
		return true
	}
	return false
}

// PaymentMode selects how a deposit batch is settled.
type PaymentMode string

const (
	PaymentCreditToBalance PaymentMode = "CREDIT_TO_BALANCE"
	PaymentCashPayout      PaymentMode = "CASH_PAYOUT"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCreditToBalance, PaymentCashPayout:
		return true
	}
	return false
}

// WasteSource tags where a deposited item was collected.
type WasteSource string

const (
	SourceCommunity   WasteSource = "COMMUNITY"
	SourceOceanDebris WasteSource = "OCEAN_DEBRIS"
)

func (s WasteSource) Valid() bool {
	switch s {
	case SourceCommunity, SourceOceanDebris:
		return true
	}
	return false
}

// Actor and member roles issued by the external identity provider.
const (
	RoleMember  = "MEMBER"
	RoleCashier = "CASHIER"
	RoleAdmin   = "ADMIN"
)

// Withdrawal statuses. The ledger only ever commits SUCCESS rows; failed
// attempts are rejected without a persisted record.
const (
	WithdrawalStatusSuccess = "SUCCESS"
)

// Audit action kinds.
const (
	AuditActionDeposit    = "ledger.deposit"
	AuditActionWithdrawal = "ledger.withdrawal"
)
