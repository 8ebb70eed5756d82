package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MemberService exposes read-only views over member balances and history.
type MemberService struct {
	store QueryStore
}

func NewMemberService(store QueryStore) *MemberService {
	return &MemberService{store: store}
}

func (s *MemberService) GetMember(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	member, err := s.store.Queries().GetMember(ctx, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMemberNotFound
		}
		return nil, fmt.Errorf("read member: %w", err)
	}
	return member, nil
}

const maxStatementPageSize = 100

func (s *MemberService) GetStatement(ctx context.Context, memberID uuid.UUID, page, pageSize int) ([]models.LedgerEntry, error) {
	page, pageSize = clampStatementPage(page, pageSize)
	offset := (page - 1) * pageSize
	return s.store.Queries().GetMemberStatement(ctx, memberID, pageSize, offset)
}

// clampStatementPage applies the pagination defaults and caps the page size
// so a single statement read stays bounded.
func clampStatementPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > maxStatementPageSize {
		pageSize = maxStatementPageSize
	}
	return page, pageSize
}
