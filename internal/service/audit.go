package service

import (
	"context"
	"fmt"

	"github.com/banksampah/waste-ledger/internal/repository"
	"github.com/google/uuid"
)

// AuditService writes immutable activity trail entries. Write is always
// called with the transaction-scoped query handle so the audit row commits or
// rolls back together with the ledger rows it describes; a failed audit
// insert aborts the whole operation.
type AuditService struct{}

func NewAuditService() *AuditService {
	return &AuditService{}
}

// Write stores a single immutable audit record.
func (s *AuditService) Write(ctx context.Context, qtx *repository.Queries, entityType, entityRef string, actorID uuid.UUID, action, detail string, metadata []byte) error {
	if err := qtx.InsertAuditLog(ctx, repository.InsertAuditLogParams{
		EntityType: entityType,
		EntityRef:  entityRef,
		ActorID:    actorID,
		Action:     action,
		Detail:     detail,
		Metadata:   metadata,
	}); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}
