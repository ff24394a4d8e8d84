package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/pricing-service/internal/app/price/contracts"
	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/models/m_price_scope"
)

// ScopeLockRepo implements ScopeLockRepository for Spanner.
type ScopeLockRepo struct {
	model *m_price_scope.Model
}

// NewScopeLockRepo creates a new ScopeLockRepo.
func NewScopeLockRepo() contracts.ScopeLockRepository {
	return &ScopeLockRepo{model: m_price_scope.NewModel()}
}

// Version reads the scope row. Inside a read-write transaction the read takes
// a shared lock that the later write upgrades, so two writers on one scope
// cannot both commit from the same version.
func (r *ScopeLockRepo) Version(ctx context.Context, reader contracts.Reader, scope domain.Scope) (int64, error) {
	row, err := reader.ReadRow(ctx, m_price_scope.TableName, m_price_scope.Key(scope.ProductID(), scope.Key()), []string{m_price_scope.Version})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read price scope version: %w", err)
	}

	var version int64
	if err := row.Column(0, &version); err != nil {
		return 0, fmt.Errorf("failed to parse price scope version: %w", err)
	}
	return version, nil
}

// BumpMut writes version current+1.
func (r *ScopeLockRepo) BumpMut(scope domain.Scope, current int64) *spanner.Mutation {
	return r.model.UpsertMut(&m_price_scope.Data{
		ProductID:      scope.ProductID(),
		ScopeKey:       scope.Key(),
		OrganizationID: organizationColumn(scope),
		Version:        current + 1,
	})
}
