// Package catalog reads the external price catalog. The catalog is owned and
// written by the master-data service; this package only resolves items for a
// unit, with a short-lived redis cache in front of Postgres.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banksampah/waste-ledger/internal/models"
	"github.com/banksampah/waste-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Reader resolves catalog items for a unit.
type Reader interface {
	ItemForUnit(ctx context.Context, itemID, unitID uuid.UUID) (*models.CatalogItem, error)
}

// PGReader reads catalog rows from Postgres with an optional redis cache.
type PGReader struct {
	queries *repository.Queries
	redis   redis.Cmdable
	ttl     time.Duration
}

func NewPGReader(queries *repository.Queries, redisClient redis.Cmdable, ttl time.Duration) *PGReader {
	return &PGReader{queries: queries, redis: redisClient, ttl: ttl}
}

// ItemForUnit returns the catalog item with the unit-local price override
// applied, or models.ErrItemNotFound when the item does not exist.
func (r *PGReader) ItemForUnit(ctx context.Context, itemID, unitID uuid.UUID) (*models.CatalogItem, error) {
	if item := r.cached(ctx, itemID, unitID); item != nil {
		return item, nil
	}

	item, err := r.queries.GetCatalogItem(ctx, itemID, unitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrItemNotFound
		}
		return nil, fmt.Errorf("read catalog item %s: %w", itemID, err)
	}

	r.cache(ctx, unitID, item)
	return item, nil
}

func (r *PGReader) cached(ctx context.Context, itemID, unitID uuid.UUID) *models.CatalogItem {
	if r.redis == nil {
		return nil
	}
	val, err := r.redis.Get(ctx, cacheKey(itemID, unitID)).Result()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("catalog cache lookup failed", zap.Error(err))
		}
		return nil
	}
	var item models.CatalogItem
	if json.Unmarshal([]byte(val), &item) != nil {
		return nil
	}
	return &item
}

func (r *PGReader) cache(ctx context.Context, unitID uuid.UUID, item *models.CatalogItem) {
	if r.redis == nil {
		return
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, cacheKey(item.ID, unitID), payload, r.ttl).Err(); err != nil {
		zap.L().Warn("catalog cache set failed", zap.Error(err))
	}
}

func cacheKey(itemID, unitID uuid.UUID) string {
	return fmt.Sprintf("catalog:%s:%s", itemID, unitID)
}
