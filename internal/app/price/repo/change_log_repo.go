package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/models/m_price_change_log"
	"github.com/light-bringer/pricing-service/internal/pkg/query"
)

// ChangeLogRepo implements ChangeLogRepository for Spanner.
type ChangeLogRepo struct {
	model *m_price_change_log.Model
}

// NewChangeLogRepo creates a new ChangeLogRepo.
func NewChangeLogRepo() contracts.ChangeLogRepository {
	return &ChangeLogRepo{model: m_price_change_log.NewModel()}
}

// InsertMut creates a mutation for inserting an audit row.
func (r *ChangeLogRepo) InsertMut(entry *domain.ChangeLogEntry) (*spanner.Mutation, error) {
	if entry.ID == "" {
		return nil, fmt.Errorf("%w: change log id is required", domain.ErrInvalidRequest)
	}
	return r.model.InsertMut(EntryToData(entry)), nil
}

// ListByProduct returns the newest change rows of a product.
func (r *ChangeLogRepo) ListByProduct(ctx context.Context, reader contracts.Reader, productID string, limit int) ([]domain.ChangeLogEntry, error) {
	stmt := query.From(m_price_change_log.TableName).
		Select(m_price_change_log.Columns...).
		Where(query.Eq(m_price_change_log.ProductID, productID)).
		OrderBy(m_price_change_log.ChangedAt, query.Desc).
		OrderBy(m_price_change_log.LogID, query.Asc).
		Limit(int64(limit)).
		Build()

	iter := reader.Query(ctx, stmt)
	defer iter.Stop()

	var entries []domain.ChangeLogEntry
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate price changes: %w", err)
		}

		var data m_price_change_log.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse price change: %w", err)
		}

		entry, err := DataToEntry(&data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// EntryToData converts an audit entry to its row.
func EntryToData(e *domain.ChangeLogEntry) *m_price_change_log.Data {
	return &m_price_change_log.Data{
		LogID:          e.ID,
		ProductID:      e.Scope.ProductID(),
		ScopeKey:       e.Scope.Key(),
		OrganizationID: organizationColumn(e.Scope),
		PriceID:        e.PriceID,
		ChangeType:     string(e.ChangeType),
		PriceType:      string(e.PriceType),
		Currency:       string(e.Currency),
		OldPrice:       toNullNumeric(e.OldPrice),
		NewPrice:       toRat(e.NewPrice),
		Delta:          toRat(e.Delta),
		DeltaPct:       toNullNumeric(e.DeltaPct),
		ChangeReason:   toNullString(e.ChangeReason),
		ChangedBy:      e.ChangedBy,
		ChangedAt:      e.ChangedAt.UTC(),
	}
}

// DataToEntry converts a row to an audit entry.
func DataToEntry(data *m_price_change_log.Data) (*domain.ChangeLogEntry, error) {
	scope, err := domain.ScopeFromKey(data.ProductID, data.ScopeKey)
	if err != nil {
		return nil, err
	}
	oldPrice, err := fromNullNumeric(data.OldPrice)
	if err != nil {
		return nil, err
	}
	newPrice, err := fromRat(&data.NewPrice)
	if err != nil {
		return nil, err
	}
	delta, err := fromRat(&data.Delta)
	if err != nil {
		return nil, err
	}
	deltaPct, err := fromNullNumeric(data.DeltaPct)
	if err != nil {
		return nil, err
	}

	return &domain.ChangeLogEntry{
		ID:           data.LogID,
		Scope:        scope,
		PriceID:      data.PriceID,
		ChangeType:   domain.ChangeType(data.ChangeType),
		PriceType:    domain.PriceType(data.PriceType),
		Currency:     domain.Currency(data.Currency),
		OldPrice:     oldPrice,
		NewPrice:     newPrice,
		Delta:        delta,
		DeltaPct:     deltaPct,
		ChangeReason: fromNullString(data.ChangeReason),
		ChangedBy:    data.ChangedBy,
		ChangedAt:    data.ChangedAt.UTC(),
	}, nil
}
