package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/banksampah/waste-ledger/internal/catalog"
	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/banksampah/waste-ledger/internal/observability"
	"github.com/banksampah/waste-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DepositService converts a cashier's multi-item waste submission into priced
// line items and commits them atomically with the member balance credit.
type DepositService struct {
	store   QueryStore
	catalog catalog.Reader
	audit   *AuditService
}

func NewDepositService(store QueryStore, cat catalog.Reader) *DepositService {
	return &DepositService{
		store:   store,
		catalog: cat,
		audit:   NewAuditService(),
	}
}

// DepositItemInput is one unpriced line of a submission.
type DepositItemInput struct {
	CatalogItemID uuid.UUID
	Weight        domain.Weight
	PricingMode   domain.PricingMode
	ManualPrice   *int64
	WasteSource   domain.WasteSource
}

// DepositBatchRequest is a full submission for one member.
type DepositBatchRequest struct {
	MemberID    uuid.UUID
	Items       []DepositItemInput
	PaymentMode domain.PaymentMode
	Note        string
}

// RecordDepositBatch validates, prices and persists a deposit batch. All line
// items, the balance credit (for CREDIT_TO_BALANCE) and the audit entry are
// written in one transaction; any failure leaves no trace of the batch.
func (s *DepositService) RecordDepositBatch(ctx context.Context, actor models.Actor, req DepositBatchRequest) (*models.DepositBatch, error) {
	if len(req.Items) == 0 {
		return nil, models.ErrEmptyBatch
	}
	if !req.PaymentMode.Valid() {
		return nil, fmt.Errorf("unknown payment mode %q", req.PaymentMode)
	}
	for _, item := range req.Items {
		if !item.Weight.Positive() {
			return nil, models.ErrInvalidWeight
		}
		if !item.PricingMode.Valid() {
			return nil, fmt.Errorf("unknown pricing mode %q", item.PricingMode)
		}
		if !item.WasteSource.Valid() {
			return nil, fmt.Errorf("unknown waste source %q", item.WasteSource)
		}
	}

	member, err := s.store.Queries().GetMember(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("read member: %w", err)
	}
	if err := AuthorizeLedgerOp(member, actor); err != nil {
		return nil, err
	}

	// Price every line before opening the transaction. A single bad price
	// rejects the whole submission.
	now := time.Now()
	groupID := newGroupID(now)
	lines := make([]models.DepositLineItem, 0, len(req.Items))
	var batchTotal int64
	for _, input := range req.Items {
		item, err := s.catalog.ItemForUnit(ctx, input.CatalogItemID, member.UnitID)
		if err != nil {
			return nil, err
		}
		unitPrice, err := ResolvePrice(item, input.PricingMode, input.ManualPrice)
		if err != nil {
			return nil, err
		}
		lineTotal := input.Weight.LineTotal(unitPrice)
		lines = append(lines, models.DepositLineItem{
			ID:            uuid.New(),
			GroupID:       groupID,
			CatalogItemID: item.ID,
			ItemName:      item.Name,
			Weight:        input.Weight,
			PricingMode:   input.PricingMode,
			UnitPrice:     unitPrice,
			LineTotal:     lineTotal,
			WasteSource:   input.WasteSource,
			CreatedAt:     now,
		})
		batchTotal += lineTotal
	}

	err = s.store.RunInTx(ctx, func(qtx *repository.Queries) error {
		// Lock the member row; the balance credit below must serialize with
		// concurrent withdrawals against the same member.
		locked, err := qtx.GetMemberForUpdate(ctx, req.MemberID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return models.ErrMemberNotFound
			}
			return fmt.Errorf("lock member: %w", err)
		}
		if err := AuthorizeLedgerOp(locked, actor); err != nil {
			return err
		}

		if err := qtx.InsertDepositGroup(ctx, repository.InsertDepositGroupParams{
			GroupID:     groupID,
			MemberID:    req.MemberID,
			ActorID:     actor.ID,
			PaymentMode: req.PaymentMode,
			TotalAmount: batchTotal,
			Note:        req.Note,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		for _, line := range lines {
			if err := qtx.InsertDepositItem(ctx, repository.InsertDepositItemParams{
				ID:            line.ID,
				GroupID:       groupID,
				MemberID:      req.MemberID,
				CatalogItemID: line.CatalogItemID,
				ItemName:      line.ItemName,
				Weight:        line.Weight,
				PricingMode:   line.PricingMode,
				UnitPrice:     line.UnitPrice,
				LineTotal:     line.LineTotal,
				WasteSource:   line.WasteSource,
				CreatedAt:     line.CreatedAt,
			}); err != nil {
				return err
			}
		}

		// CASH_PAYOUT batches are recorded for reporting only; the stored
		// value balance is untouched.
		if req.PaymentMode == domain.PaymentCreditToBalance && batchTotal > 0 {
			if _, err := qtx.AddMemberBalance(ctx, req.MemberID, batchTotal); err != nil {
				return err
			}
		}

		metadata, _ := json.Marshal(map[string]any{
			"member_id":    req.MemberID,
			"payment_mode": req.PaymentMode,
			"item_count":   len(lines),
			"total_amount": batchTotal,
		})
		detail := fmt.Sprintf("deposit batch %s: %d item(s), total %d", groupID, len(lines), batchTotal)
		return s.audit.Write(ctx, qtx, "deposit_batch", groupID, actor.ID, domain.AuditActionDeposit, detail, metadata)
	})
	if err != nil {
		result := "failed"
		if models.IsClientError(err) {
			result = "rejected"
		}
		observability.IncrementDeposit(string(req.PaymentMode), result)
		return nil, err
	}

	observability.IncrementDeposit(string(req.PaymentMode), "committed")
	return &models.DepositBatch{
		GroupID:     groupID,
		MemberID:    req.MemberID,
		ActorID:     actor.ID,
		PaymentMode: req.PaymentMode,
		TotalAmount: batchTotal,
		Note:        req.Note,
		LineItems:   lines,
		CreatedAt:   now,
	}, nil
}

// newGroupID builds the date-stamped batch token, e.g. "DPT-20250114-9f1c02aa".
// Retrying callers reuse it as an idempotency key.
func newGroupID(now time.Time) string {
	token := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("DPT-%s-%s", now.Format("20060102"), token)
}
