package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/banksampah/waste-ledger/internal/observability"
	"github.com/banksampah/waste-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WithdrawalService debits a member's stored-value balance.
type WithdrawalService struct {
	store QueryStore
	audit *AuditService
}

func NewWithdrawalService(store QueryStore) *WithdrawalService {
	return &WithdrawalService{
		store: store,
		audit: NewAuditService(),
	}
}

// RecordWithdrawal persists one balance debit. Sufficiency is pre-checked
// for fast rejection, then re-checked against the locked member row inside
// the transaction; concurrent withdrawals can never drive the balance
// negative. A rejected withdrawal leaves no persisted row.
func (s *WithdrawalService) RecordWithdrawal(ctx context.Context, actor models.Actor, memberID uuid.UUID, amount int64, note string) (*models.WithdrawalRecord, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	member, err := s.store.Queries().GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("read member: %w", err)
	}
	if err := AuthorizeLedgerOp(member, actor); err != nil {
		return nil, err
	}
	if err := AuthorizeWithdrawal(member, amount); err != nil {
		return nil, err
	}

	withdrawalID := uuid.New()
	now := time.Now()
	var remaining int64
	err = s.store.RunInTx(ctx, func(qtx *repository.Queries) error {
		locked, err := qtx.GetMemberForUpdate(ctx, memberID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrMemberNotFound
			}
			return fmt.Errorf("lock member: %w", err)
		}
		if err := AuthorizeLedgerOp(locked, actor); err != nil {
			return err
		}
		// Authoritative sufficiency check against the locked row.
		if amount > locked.Balance {
			return &models.InsufficientFundsError{Balance: locked.Balance, Requested: amount}
		}

		if err := qtx.InsertWithdrawal(ctx, repository.InsertWithdrawalParams{
			ID:        withdrawalID,
			MemberID:  memberID,
			ActorID:   actor.ID,
			Amount:    amount,
			Note:      note,
			Status:    domain.WithdrawalStatusSuccess,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		remaining, err = qtx.AddMemberBalance(ctx, memberID, -amount)
		if err != nil {
			return err
		}

		metadata, _ := json.Marshal(map[string]any{
			"member_id":         memberID,
			"amount":            amount,
			"remaining_balance": remaining,
		})
		detail := fmt.Sprintf("withdrawal %s: amount %d", withdrawalID, amount)
		return s.audit.Write(ctx, qtx, "withdrawal", withdrawalID.String(), actor.ID, domain.AuditActionWithdrawal, detail, metadata)
	})
	if err != nil {
		result := "failed"
		if models.IsClientError(err) {
			result = "rejected"
		}
		observability.IncrementWithdrawal(result)
		return nil, err
	}

	observability.IncrementWithdrawal("committed")
	return &models.WithdrawalRecord{
		ID:               withdrawalID,
		MemberID:         memberID,
		ActorID:          actor.ID,
		Amount:           amount,
		Note:             note,
		Status:           domain.WithdrawalStatusSuccess,
		RemainingBalance: remaining,
		CreatedAt:        now,
	}, nil
}
