package contracts

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
)

// ScopeLockRepository manages the per-scope version row every write reads
// and rewrites, which serializes writers on one scope.
type ScopeLockRepository interface {
	// Version returns the stored version of scope, 0 when it was never written.
	Version(ctx context.Context, r Reader, scope domain.Scope) (int64, error)

	// BumpMut writes version current+1.
	BumpMut(scope domain.Scope, current int64) *spanner.Mutation
}
