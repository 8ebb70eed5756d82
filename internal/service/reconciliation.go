package service

import (
	"context"
	"fmt"

	"github.com/banksampah/waste-ledger/internal/observability"
	"go.uber.org/zap"
)

// ReconciliationService verifies ledger integrity invariants: every batch
// total equals the sum of its line items, and every member balance replays
// from the committed history.
type ReconciliationService struct {
	store QueryStore
}

func NewReconciliationService(store QueryStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run performs one integrity sweep. Drift is reported, never repaired;
// repairing would itself be an unaudited balance mutation.
func (s *ReconciliationService) Run(ctx context.Context) error {
	queries := s.store.Queries()

	mismatches, err := queries.GetGroupTotalMismatches(ctx)
	if err != nil {
		return fmt.Errorf("run group total check: %w", err)
	}
	for _, m := range mismatches {
		observability.IncrementBalanceDrift("batch_total")
		zap.L().Error("CRITICAL: deposit batch total mismatch",
			zap.String("group_id", m.GroupID),
			zap.Int64("total_amount", m.TotalAmount),
			zap.Int64("line_sum", m.LineSum),
		)
	}

	drifts, err := queries.GetBalanceDrifts(ctx)
	if err != nil {
		return fmt.Errorf("run balance drift check: %w", err)
	}
	for _, d := range drifts {
		observability.IncrementBalanceDrift("member_balance")
		zap.L().Error("CRITICAL: member balance drift detected",
			zap.String("member_id", d.MemberID.String()),
			zap.Int64("balance", d.Balance),
			zap.Int64("expected", d.Expected),
		)
	}

	if len(mismatches) == 0 && len(drifts) == 0 {
		zap.L().Info("ledger reconciled, no drift")
	}
	return nil
}
