package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/pricing-service/internal/pkg/committer"
)

// TxRunner executes use case bodies in Spanner transactions.
// *committer.Committer implements it.
type TxRunner interface {
	RunReadWrite(ctx context.Context, fn committer.TxnFunc) (time.Time, error)
	RunReadOnly(ctx context.Context, fn committer.ReadFunc) error
}
