package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/models/m_price_interval"
	"github.com/light-bringer/pricing-service/internal/pkg/query"
)

// PriceIntervalRepo implements PriceIntervalRepository for Spanner.
type PriceIntervalRepo struct {
	model *m_price_interval.Model
}

// NewPriceIntervalRepo creates a new PriceIntervalRepo.
func NewPriceIntervalRepo() contracts.PriceIntervalRepository {
	return &PriceIntervalRepo{model: m_price_interval.NewModel()}
}

func scopeQuery(scope domain.Scope) *query.Builder {
	return query.From(m_price_interval.TableName).
		Select(m_price_interval.Columns...).
		Where(query.Eq(m_price_interval.ProductID, scope.ProductID())).
		Where(query.Eq(m_price_interval.ScopeKey, scope.Key()))
}

// TimelineStatement is the scan LoadTimeline issues.
func TimelineStatement(scope domain.Scope, forUpdate bool) spanner.Statement {
	b := scopeQuery(scope).
		OrderBy(m_price_interval.EffectiveFrom, query.Asc).
		OrderBy(m_price_interval.CreatedAt, query.Asc)
	if forUpdate {
		b = b.ForUpdate()
	}
	return b.Build()
}

// EffectiveAtStatement selects the interval in force at at.
func EffectiveAtStatement(scope domain.Scope, at time.Time) spanner.Statement {
	return scopeQuery(scope).
		Where(query.Lte(m_price_interval.EffectiveFrom, at)).
		Where(query.Or(
			query.IsNull(m_price_interval.EffectiveTo),
			query.Gt(m_price_interval.EffectiveTo, at),
		)).
		OrderBy(m_price_interval.EffectiveFrom, query.Desc).
		OrderBy(m_price_interval.CreatedAt, query.Desc).
		Limit(1).
		Build()
}

// LoadTimeline reads the whole timeline of scope.
func (r *PriceIntervalRepo) LoadTimeline(ctx context.Context, reader contracts.Reader, scope domain.Scope, forUpdate bool) (*domain.Timeline, error) {
	intervals, err := r.collect(ctx, reader, TimelineStatement(scope, forUpdate))
	if err != nil {
		return nil, err
	}
	return domain.NewTimeline(scope, intervals), nil
}

// EffectiveAt returns the interval in force at at.
func (r *PriceIntervalRepo) EffectiveAt(ctx context.Context, reader contracts.Reader, scope domain.Scope, at time.Time) (*domain.PriceInterval, error) {
	intervals, err := r.collect(ctx, reader, EffectiveAtStatement(scope, at.UTC()))
	if err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return nil, domain.ErrPriceNotFound
	}
	return intervals[0], nil
}

func (r *PriceIntervalRepo) collect(ctx context.Context, reader contracts.Reader, stmt spanner.Statement) ([]*domain.PriceInterval, error) {
	iter := reader.Query(ctx, stmt)
	defer iter.Stop()

	var intervals []*domain.PriceInterval
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate price intervals: %w", err)
		}

		var data m_price_interval.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse price interval: %w", err)
		}

		interval, err := DataToInterval(&data)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, interval)
	}
	return intervals, nil
}

// InsertMut creates a mutation for inserting a new interval.
func (r *PriceIntervalRepo) InsertMut(interval *domain.PriceInterval) (*spanner.Mutation, error) {
	if err := interval.Scope.Validate(); err != nil {
		return nil, err
	}
	if interval.ID == "" {
		return nil, fmt.Errorf("%w: interval id is required", domain.ErrInvalidRequest)
	}
	return r.model.InsertMut(IntervalToData(interval)), nil
}

// SetEffectiveToMut moves the end of an interval.
func (r *PriceIntervalRepo) SetEffectiveToMut(scope domain.Scope, priceID string, effectiveTo *time.Time) *spanner.Mutation {
	return r.model.SetEffectiveToMut(scope.ProductID(), scope.Key(), priceID, toNullTime(effectiveTo))
}

// DeleteMut creates a mutation removing an interval.
func (r *PriceIntervalRepo) DeleteMut(scope domain.Scope, priceID string) *spanner.Mutation {
	return r.model.DeleteMut(scope.ProductID(), scope.Key(), priceID)
}

// IntervalToData converts a domain interval to its row.
func IntervalToData(iv *domain.PriceInterval) *m_price_interval.Data {
	data := &m_price_interval.Data{
		ProductID:      iv.Scope.ProductID(),
		ScopeKey:       iv.Scope.Key(),
		PriceID:        iv.ID,
		OrganizationID: organizationColumn(iv.Scope),
		ExchangeRate:   toNullNumeric(iv.ExchangeRate),
		EffectiveFrom:  iv.EffectiveFrom.UTC(),
		EffectiveTo:    toNullTime(iv.EffectiveTo),
		Source:         iv.Source,
		ChangeReason:   toNullString(iv.ChangeReason),
		ChangedBy:      iv.ChangedBy,
		CreatedAt:      iv.CreatedAt.UTC(),
	}
	for _, k := range domain.AllFields {
		*data.Amount(k.Name()) = toNullNumeric(iv.Fields.Ptr(k))
	}
	return data
}

// DataToInterval converts a row to a domain interval.
func DataToInterval(data *m_price_interval.Data) (*domain.PriceInterval, error) {
	scope, err := domain.ScopeFromKey(data.ProductID, data.ScopeKey)
	if err != nil {
		return nil, err
	}

	fields := make(domain.PriceFields)
	for _, k := range domain.AllFields {
		v, err := fromNullNumeric(*data.Amount(k.Name()))
		if err != nil {
			return nil, fmt.Errorf("price %s %s: %w", data.PriceID, k.Name(), err)
		}
		if v != nil {
			fields[k] = *v
		}
	}

	rate, err := fromNullNumeric(data.ExchangeRate)
	if err != nil {
		return nil, fmt.Errorf("price %s exchange rate: %w", data.PriceID, err)
	}

	return &domain.PriceInterval{
		ID:            data.PriceID,
		Scope:         scope,
		Fields:        fields,
		ExchangeRate:  rate,
		EffectiveFrom: data.EffectiveFrom.UTC(),
		EffectiveTo:   fromNullTime(data.EffectiveTo),
		Source:        data.Source,
		ChangeReason:  fromNullString(data.ChangeReason),
		ChangedBy:     data.ChangedBy,
		CreatedAt:     data.CreatedAt.UTC(),
	}, nil
}
