package contracts

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// ChangeLogRepository defines the append-only field-level audit store.
type ChangeLogRepository interface {
	// InsertMut creates a mutation for one audit row. entry.ID must be set.
	InsertMut(entry *domain.ChangeLogEntry) (*spanner.Mutation, error)

	// ListByProduct returns change rows of every scope of a product, newest first.
	ListByProduct(ctx context.Context, r Reader, productID string, limit int) ([]domain.ChangeLogEntry, error)
}
