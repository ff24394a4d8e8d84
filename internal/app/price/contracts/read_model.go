package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// ReadModel serves the query side from a single-use read-only snapshot.
type ReadModel interface {
	EffectivePrice(ctx context.Context, scope domain.Scope, at time.Time) (*domain.PriceInterval, error)
	Timeline(ctx context.Context, scope domain.Scope) (*domain.Timeline, error)
	ChangeLog(ctx context.Context, productID string, limit int) ([]domain.ChangeLogEntry, error)
}
