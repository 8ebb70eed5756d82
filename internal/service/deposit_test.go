package service

import (
	"context"
	"testing"
	"time"

	"github.com/banksampah/waste-ledger/internal/catalog"
	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/banksampah/waste-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDepositService(db *pgxpool.Pool) *DepositService {
	store := repository.NewStore(db)
	return NewDepositService(store, catalog.NewPGReader(store.Queries(), nil, 0))
}

func kg(f float64) domain.Weight {
	return domain.NewWeight(decimal.NewFromFloat(f))
}

func TestRecordDepositBatch_CreditToBalance(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 50_000)
	plasticID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cardboardID := seedCatalogItem(t, db, "Kardus", 3000, 2500, 3500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	batch, err := svc.RecordDepositBatch(ctx, cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: plasticID, Weight: kg(3), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
			{CatalogItemID: cardboardID, Weight: kg(2), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
		Note:        "setor mingguan",
	})
	require.NoError(t, err)

	// 3kg @2000 + 2kg @3000 = 12000
	assert.Equal(t, int64(12_000), batch.TotalAmount)
	assert.Len(t, batch.LineItems, 2)
	assert.NotEmpty(t, batch.GroupID)
	assert.Regexp(t, `^DPT-\d{8}-[0-9a-f]{8}$`, batch.GroupID)

	// Sum of line totals equals the batch total.
	var lineSum int64
	for _, line := range batch.LineItems {
		lineSum += line.LineTotal
		assert.Equal(t, batch.GroupID, line.GroupID)
	}
	assert.Equal(t, batch.TotalAmount, lineSum)

	assert.Equal(t, int64(62_000), memberBalance(t, db, memberID))

	// Persisted rows carry the name snapshot.
	items, err := repository.New(db).GetDepositItems(ctx, batch.GroupID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	names := []string{items[0].ItemName, items[1].ItemName}
	assert.Contains(t, names, "Plastik PET")
	assert.Contains(t, names, "Kardus")

	assert.Equal(t, 1, countRows(t, db, "audit_log"))

	// The returned timestamp is the one that was persisted.
	var storedAt time.Time
	require.NoError(t, db.QueryRow(ctx,
		"SELECT created_at FROM deposit_groups WHERE group_id = $1", batch.GroupID).Scan(&storedAt))
	assert.WithinDuration(t, batch.CreatedAt, storedAt, time.Microsecond)
}

func TestRecordDepositBatch_CashPayoutLeavesBalance(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 50_000)
	plasticID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	batch, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: plasticID, Weight: kg(6), PricingMode: domain.PricingSystem, WasteSource: domain.SourceOceanDebris},
		},
		PaymentMode: domain.PaymentCashPayout,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12_000), batch.TotalAmount)
	// Cash-settled deposits are recorded but never touch the stored balance.
	assert.Equal(t, int64(50_000), memberBalance(t, db, memberID))
}

func TestRecordDepositBatch_LocalPricing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 0)
	itemID := seedCatalogItem(t, db, "Kaleng Aluminium", 10_000, 8_000, 12_000)
	seedUnitPrice(t, db, itemID, unitID, 11_000)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	batch, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: itemID, Weight: kg(1), PricingMode: domain.PricingLocal, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11_000), batch.LineItems[0].UnitPrice)
	assert.Equal(t, int64(11_000), memberBalance(t, db, memberID))
}

func TestRecordDepositBatch_CustomPriceOutOfBoundsRollsBack(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 50_000)
	okItem := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	boundedItem := seedCatalogItem(t, db, "Kardus", 2500, 2000, 3000)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	_, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: okItem, Weight: kg(3), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
			{CatalogItemID: boundedItem, Weight: kg(2), PricingMode: domain.PricingCustom, ManualPrice: int64Ptr(3500), WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})

	var oob *models.PriceOutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, int64(3500), oob.Attempted)

	// One bad line rejects the whole batch: nothing persisted, balance intact.
	assert.Equal(t, 0, countRows(t, db, "deposit_items"))
	assert.Equal(t, 0, countRows(t, db, "deposit_groups"))
	assert.Equal(t, 0, countRows(t, db, "audit_log"))
	assert.Equal(t, int64(50_000), memberBalance(t, db, memberID))
}

func TestRecordDepositBatch_AuditFailureRollsBack(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	// Make the audit insert fail so the batch aborts after the group, line
	// items and balance credit have already been written in the transaction.
	_, err := db.Exec(ctx, `
		CREATE OR REPLACE FUNCTION audit_log_reject() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'audit log unavailable';
		END;
		$$ LANGUAGE plpgsql`)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `
		CREATE TRIGGER audit_log_reject_insert BEFORE INSERT ON audit_log
		FOR EACH ROW EXECUTE FUNCTION audit_log_reject()`)
	require.NoError(t, err)
	defer func() {
		_, _ = db.Exec(context.Background(), `DROP TRIGGER IF EXISTS audit_log_reject_insert ON audit_log`)
		_, _ = db.Exec(context.Background(), `DROP FUNCTION IF EXISTS audit_log_reject`)
	}()

	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 50_000)
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	_, err = svc.RecordDepositBatch(ctx, cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: itemID, Weight: kg(3), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})
	require.Error(t, err)

	// The group, line items and balance credit were all rolled back with the
	// failed audit insert.
	assert.Equal(t, 0, countRows(t, db, "deposit_groups"))
	assert.Equal(t, 0, countRows(t, db, "deposit_items"))
	assert.Equal(t, 0, countRows(t, db, "audit_log"))
	assert.Equal(t, int64(50_000), memberBalance(t, db, memberID))
}

func TestRecordDepositBatch_Validation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 0)
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	t.Run("empty batch", func(t *testing.T) {
		_, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
			MemberID:    memberID,
			PaymentMode: domain.PaymentCreditToBalance,
		})
		assert.ErrorIs(t, err, models.ErrEmptyBatch)
	})

	t.Run("zero weight", func(t *testing.T) {
		_, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
			MemberID: memberID,
			Items: []DepositItemInput{
				{CatalogItemID: itemID, Weight: kg(0), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
			},
			PaymentMode: domain.PaymentCreditToBalance,
		})
		assert.ErrorIs(t, err, models.ErrInvalidWeight)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
			MemberID: uuid.New(),
			Items: []DepositItemInput{
				{CatalogItemID: itemID, Weight: kg(1), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
			},
			PaymentMode: domain.PaymentCreditToBalance,
		})
		assert.ErrorIs(t, err, models.ErrMemberNotFound)
	})

	t.Run("unknown catalog item", func(t *testing.T) {
		_, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
			MemberID: memberID,
			Items: []DepositItemInput{
				{CatalogItemID: uuid.New(), Weight: kg(1), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
			},
			PaymentMode: domain.PaymentCreditToBalance,
		})
		assert.ErrorIs(t, err, models.ErrItemNotFound)
	})
}

func TestRecordDepositBatch_Authorization(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newDepositService(db)

	unitID := uuid.New()
	otherUnit := uuid.New()
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)

	request := func(memberID uuid.UUID) DepositBatchRequest {
		return DepositBatchRequest{
			MemberID: memberID,
			Items: []DepositItemInput{
				{CatalogItemID: itemID, Weight: kg(1), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
			},
			PaymentMode: domain.PaymentCreditToBalance,
		}
	}

	t.Run("cashier cannot cross units", func(t *testing.T) {
		memberID := seedMember(t, db, otherUnit, 0)
		cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}
		_, err := svc.RecordDepositBatch(context.Background(), cashier, request(memberID))
		assert.ErrorIs(t, err, models.ErrUnitMismatch)
	})

	t.Run("admin can cross units", func(t *testing.T) {
		memberID := seedMember(t, db, otherUnit, 0)
		admin := models.Actor{ID: uuid.New(), Role: domain.RoleAdmin, UnitID: unitID}
		_, err := svc.RecordDepositBatch(context.Background(), admin, request(memberID))
		assert.NoError(t, err)
	})

	t.Run("blocked member rejected", func(t *testing.T) {
		memberID := seedMember(t, db, unitID, 0, blocked())
		cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}
		_, err := svc.RecordDepositBatch(context.Background(), cashier, request(memberID))
		assert.ErrorIs(t, err, models.ErrMemberBlocked)
	})

	t.Run("non-member account rejected", func(t *testing.T) {
		memberID := seedMember(t, db, unitID, 0, withRole(domain.RoleCashier))
		cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}
		_, err := svc.RecordDepositBatch(context.Background(), cashier, request(memberID))
		assert.ErrorIs(t, err, models.ErrInvalidRole)
	})
}

func TestRecordDepositBatch_FractionalWeight(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	svc := newDepositService(db)

	unitID := uuid.New()
	memberID := seedMember(t, db, unitID, 0)
	itemID := seedCatalogItem(t, db, "Plastik PET", 2000, 1500, 2500)
	cashier := models.Actor{ID: uuid.New(), Role: domain.RoleCashier, UnitID: unitID}

	batch, err := svc.RecordDepositBatch(context.Background(), cashier, DepositBatchRequest{
		MemberID: memberID,
		Items: []DepositItemInput{
			{CatalogItemID: itemID, Weight: kg(2.5), PricingMode: domain.PricingSystem, WasteSource: domain.SourceCommunity},
		},
		PaymentMode: domain.PaymentCreditToBalance,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5000), batch.TotalAmount)
	assert.Equal(t, int64(5000), memberBalance(t, db, memberID))
}
