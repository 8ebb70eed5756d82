package models

import (
	"errors"
	"fmt"
)

// Authorization-stage failures. These fire before any write.
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidRole    = errors.New("account is not a member account")
	ErrMemberBlocked  = errors.New("member account is blocked")
	ErrUnitMismatch   = errors.New("member belongs to a different unit")
)

// Input-validation failures.
var (
	ErrEmptyBatch    = errors.New("deposit batch must contain at least one item")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrInvalidWeight = errors.New("weight must be positive")
	ErrInvalidPrice  = errors.New("manual price is required for custom pricing")
	ErrItemNotFound  = errors.New("catalog item not found")
)

// PriceOutOfBoundsError reports a CUSTOM price outside the catalog band.
type PriceOutOfBoundsError struct {
	ItemName   string
	Attempted  int64
	LowerBound int64
	UpperBound int64
}

func (e *PriceOutOfBoundsError) Error() string {
	return fmt.Sprintf("price %d for %q is outside the allowed range %d-%d",
		e.Attempted, e.ItemName, e.LowerBound, e.UpperBound)
}

// InsufficientFundsError reports a withdrawal exceeding the member balance.
type InsufficientFundsError struct {
	Balance   int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance is %d, requested %d", e.Balance, e.Requested)
}

// IsClientError reports whether err belongs to the ledger's typed taxonomy,
// i.e. it is caused by the request rather than by persistence.
func IsClientError(err error) bool {
	var priceErr *PriceOutOfBoundsError
	var fundsErr *InsufficientFundsError
	switch {
	case errors.As(err, &priceErr), errors.As(err, &fundsErr):
		return true
	}
	for _, sentinel := range []error{
		ErrMemberNotFound, ErrInvalidRole, ErrMemberBlocked, ErrUnitMismatch,
		ErrEmptyBatch, ErrInvalidAmount, ErrInvalidWeight, ErrInvalidPrice, ErrItemNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
