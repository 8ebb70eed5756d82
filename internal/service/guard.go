package service

import (
	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
)

// AuthorizeLedgerOp checks that a member is eligible for a ledger operation
// by the given actor. Cashiers are scoped to their own unit; admins bypass
// the unit check.
func AuthorizeLedgerOp(member *models.Member, actor models.Actor) error {
	if member == nil {
		return models.ErrMemberNotFound
	}
	if member.Role != domain.RoleMember {
		return models.ErrInvalidRole
	}
	if member.Blocked {
		return models.ErrMemberBlocked
	}
	if actor.Role == domain.RoleCashier && actor.UnitID != member.UnitID {
		return models.ErrUnitMismatch
	}
	return nil
}

// AuthorizeWithdrawal is the advisory sufficiency pre-check. The
// authoritative re-check runs against the locked row inside the writer's
// transaction; this one only rejects obviously doomed requests early.
func AuthorizeWithdrawal(member *models.Member, amount int64) error {
	if amount > member.Balance {
		return &models.InsufficientFundsError{Balance: member.Balance, Requested: amount}
	}
	return nil
}
