package contracts

import (
	"context"

	"cloud.google.com/go/spanner"
)

// Reader is the read surface shared by *spanner.ReadOnlyTransaction and
// *spanner.ReadWriteTransaction. Repositories read through it so the same
// code serves snapshot queries and locked reads inside a write.
type Reader interface {
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
}
