package service

import (
	"context"
	"testing"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/banksampah/waste-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciliation_CleanLedger(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	depositSvc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 0)
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	_, err := depositSvc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: itemID, Weight: kg(3), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})
	require.NoError(t, err)

	queries := repository.New(db)
	mismatches, err := queries.GetGroupTotalMismatches(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	drifts, err := queries.GetBalanceDrifts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifts)

	require.NoError(t, NewReconciliationService(repository.NewStore(db)).Run(context.Background()))
}

func TestReconciliation_DetectsBalanceDrift(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	depositSvc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 0)
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	_, err := depositSvc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: itemID, Weight: kg(3), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})
	require.NoError(t, err)

	// Corrupt the stored balance behind the ledger's back.
	_, err = db.Exec(context.Background(),
		`UPDATE members SET balance = balance + 999 WHERE id = $1`, memberID)
	require.NoError(t, err)

	drifts, err := repository.New(db).GetBalanceDrifts(context.Background())
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, memberID, drifts[0].MemberID)
	assert.Equal(t, int64(6999), drifts[0].Balance)
	assert.Equal(t, int64(6000), drifts[0].Expected)
}

func TestReconciliation_DetectsGroupTotalMismatch(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	depositSvc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 0)
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	batch, err := depositSvc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: itemID, Weight: kg(3), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})
	require.NoError(t, err)

	_, err = db.Exec(context.Background(),
		`UPDATE deposit_groups SET total_amount = total_amount + 1 WHERE group_id = $1`, batch.GroupID)
	require.NoError(t, err)

	mismatches, err := repository.New(db).GetGroupTotalMismatches(context.Background())
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, batch.GroupID, mismatches[0].GroupID)
	assert.Equal(t, int64(6001), mismatches[0].TotalAmount)
	assert.Equal(t, int64(6000), mismatches[0].LineSum)
}
