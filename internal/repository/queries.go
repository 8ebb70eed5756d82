package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/banksampah/waste-ledger/internal/domain"
	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx, letting every query run
// either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries holds all SQL access for the ledger.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a query set bound to the given transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const memberColumns = `id, unit_id, name, role, blocked, balance, created_at`

func scanMember(row pgx.Row) (*models.Member, error) {
	var m models.Member
	if err := row.Scan(&m.ID, &m.UnitID, &m.Name, &m.Role, &m.Blocked, &m.Balance, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMember reads a member row without locking it.
func (q *Queries) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	row := q.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

// GetMemberForUpdate reads a member row under a row-level lock. The caller
// must be inside a transaction; the lock is what serializes concurrent
// balance mutations per member.
func (q *Queries) GetMemberForUpdate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	row := q.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1 FOR UPDATE`, id)
	return scanMember(row)
}

// AddMemberBalance applies a signed delta to the member balance and returns
// the new value. Only the ledger writer paths call this.
func (q *Queries) AddMemberBalance(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	var balance int64
	err := q.db.QueryRow(ctx,
		`UPDATE members SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		delta, id).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("update member balance: %w", err)
	}
	return balance, nil
}

// GetCatalogItem reads a catalog item together with the unit-local price
// override for the given unit, if one exists.
func (q *Queries) GetCatalogItem(ctx context.Context, itemID, unitID uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := q.db.QueryRow(ctx, `
		SELECT ci.id, ci.name, ci.base_price, ci.lower_bound, ci.upper_bound, cup.local_price
		FROM catalog_items ci
		LEFT JOIN catalog_unit_prices cup ON cup.item_id = ci.id AND cup.unit_id = $2
		WHERE ci.id = $1`,
		itemID, unitID).Scan(&item.ID, &item.Name, &item.BasePrice, &item.LowerBound, &item.UpperBound, &item.LocalPrice)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

type InsertDepositGroupParams struct {
	GroupID     string
	MemberID    uuid.UUID
	ActorID     uuid.UUID
	PaymentMode domain.PaymentMode
	TotalAmount int64
	Note        string
	CreatedAt   time.Time
}

func (q *Queries) InsertDepositGroup(ctx context.Context, p InsertDepositGroupParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO deposit_groups (group_id, member_id, actor_id, payment_mode, total_amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.GroupID, p.MemberID, p.ActorID, p.PaymentMode, p.TotalAmount, p.Note, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deposit group: %w", err)
	}
	return nil
}

type InsertDepositItemParams struct {
	ID            uuid.UUID
	GroupID       string
	MemberID      uuid.UUID
	CatalogItemID uuid.UUID
	ItemName      string
	Weight        domain.Weight
	PricingMode   domain.PricingMode
	UnitPrice     int64
	LineTotal     int64
	WasteSource   domain.WasteSource
	CreatedAt     time.Time
}

func (q *Queries) InsertDepositItem(ctx context.Context, p InsertDepositItemParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO deposit_items (id, group_id, member_id, catalog_item_id, item_name, weight,
			pricing_mode, unit_price, line_total, waste_source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.GroupID, p.MemberID, p.CatalogItemID, p.ItemName, p.Weight.String(),
		p.PricingMode, p.UnitPrice, p.LineTotal, p.WasteSource, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert deposit item: %w", err)
	}
	return nil
}

// GetDepositItems returns the line items of a committed batch.
func (q *Queries) GetDepositItems(ctx context.Context, groupID string) ([]models.DepositLineItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, group_id, catalog_item_id, item_name, weight::text, pricing_mode,
			unit_price, line_total, waste_source, created_at
		FROM deposit_items WHERE group_id = $1 ORDER BY created_at, id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("get deposit items: %w", err)
	}
	defer rows.Close()

	var items []models.DepositLineItem
	for rows.Next() {
		var it models.DepositLineItem
		var weight string
		if err := rows.Scan(&it.ID, &it.GroupID, &it.CatalogItemID, &it.ItemName, &weight,
			&it.PricingMode, &it.UnitPrice, &it.LineTotal, &it.WasteSource, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deposit item: %w", err)
		}
		w, err := domain.ParseWeight(weight)
		if err != nil {
			return nil, err
		}
		it.Weight = w
		items = append(items, it)
	}
	return items, rows.Err()
}

type InsertWithdrawalParams struct {
	ID        uuid.UUID
	MemberID  uuid.UUID
	ActorID   uuid.UUID
	Amount    int64
	Note      string
	Status    string
	CreatedAt time.Time
}

func (q *Queries) InsertWithdrawal(ctx context.Context, p InsertWithdrawalParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO withdrawals (id, member_id, actor_id, amount, note, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.MemberID, p.ActorID, p.Amount, p.Note, p.Status, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

type InsertAuditLogParams struct {
	EntityType string
	EntityRef  string
	ActorID    uuid.UUID
	Action     string
	Detail     string
	Metadata   []byte
}

func (q *Queries) InsertAuditLog(ctx context.Context, p InsertAuditLogParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO audit_log (entity_type, entity_ref, actor_id, action, detail, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		p.EntityType, p.EntityRef, p.ActorID, p.Action, p.Detail, p.Metadata)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// GetMemberStatement returns deposits and withdrawals for a member newest
// first, as one unified list.
func (q *Queries) GetMemberStatement(ctx context.Context, memberID uuid.UUID, limit, offset int) ([]models.LedgerEntry, error) {
	rows, err := q.db.Query(ctx, `
		SELECT kind, reference, amount, created_at FROM (
			SELECT 'deposit' AS kind, group_id AS reference, total_amount AS amount, created_at
			FROM deposit_groups WHERE member_id = $1
			UNION ALL
			SELECT 'withdrawal' AS kind, id::text AS reference, amount, created_at
			FROM withdrawals WHERE member_id = $1
		) ledger
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get member statement: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.Kind, &e.Reference, &e.Amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GroupTotalMismatch is a deposit group whose stored total disagrees with the
// sum of its line items.
type GroupTotalMismatch struct {
	GroupID     string
	TotalAmount int64
	LineSum     int64
}

func (q *Queries) GetGroupTotalMismatches(ctx context.Context) ([]GroupTotalMismatch, error) {
	rows, err := q.db.Query(ctx, `
		SELECT dg.group_id, dg.total_amount, COALESCE(SUM(di.line_total), 0) AS line_sum
		FROM deposit_groups dg
		LEFT JOIN deposit_items di ON di.group_id = dg.group_id
		GROUP BY dg.group_id, dg.total_amount
		HAVING dg.total_amount <> COALESCE(SUM(di.line_total), 0)`)
	if err != nil {
		return nil, fmt.Errorf("get group total mismatches: %w", err)
	}
	defer rows.Close()

	var out []GroupTotalMismatch
	for rows.Next() {
		var m GroupTotalMismatch
		if err := rows.Scan(&m.GroupID, &m.TotalAmount, &m.LineSum); err != nil {
			return nil, fmt.Errorf("scan group mismatch: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// BalanceDrift is a member whose stored balance disagrees with the replayed
// ledger history (credited deposits minus withdrawals).
type BalanceDrift struct {
	MemberID uuid.UUID
	Balance  int64
	Expected int64
}

func (q *Queries) GetBalanceDrifts(ctx context.Context) ([]BalanceDrift, error) {
	rows, err := q.db.Query(ctx, `
		SELECT m.id, m.balance,
			COALESCE(d.credited, 0) - COALESCE(w.debited, 0) AS expected
		FROM members m
		LEFT JOIN (
			SELECT member_id, SUM(total_amount) AS credited
			FROM deposit_groups WHERE payment_mode = 'CREDIT_TO_BALANCE'
			GROUP BY member_id
		) d ON d.member_id = m.id
		LEFT JOIN (
			SELECT member_id, SUM(amount) AS debited
			FROM withdrawals GROUP BY member_id
		) w ON w.member_id = m.id
		WHERE m.balance <> COALESCE(d.credited, 0) - COALESCE(w.debited, 0)`)
	if err != nil {
		return nil, fmt.Errorf("get balance drifts: %w", err)
	}
	defer rows.Close()

	var out []BalanceDrift
	for rows.Next() {
		var d BalanceDrift
		if err := rows.Scan(&d.MemberID, &d.Balance, &d.Expected); err != nil {
			return nil, fmt.Errorf("scan balance drift: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
