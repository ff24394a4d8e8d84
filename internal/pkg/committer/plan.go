// Package committer implements the Golden Mutation Pattern for Spanner transactions.
//
// Repositories never write. They return *spanner.Mutation values, usecases
// collect them into a CommitPlan, and the Committer applies the plan in one
// transaction. Outbox events and change-log rows therefore commit or fail
// together with the price intervals they describe.
//
// # Usage Pattern
//
// Writes that depend on what they read run inside RunReadWrite so the reads
// and the buffered mutations share one read-write transaction:
//
//	_, err := committer.RunReadWrite(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*committer.CommitPlan, error) {
//	    // 1. Lock and load the state the decision depends on
//	    timeline, err := priceRepo.LoadTimelineForUpdate(ctx, txn, scope)
//
//	    // 2. Decide in the pure domain
//	    syncPlan, err := domain.PlanSync(timeline, req, now)
//
//	    // 3. Repositories return mutations, nothing is written yet
//	    plan := committer.NewPlan()
//	    plan.Add(priceRepo.InsertMut(syncPlan.Interval))
//	    plan.Add(outboxRepo.InsertMut(event))
//	    return plan, nil
//	})
//
// Spanner may run the function more than once when a transaction is aborted,
// so it must not have side effects outside the transaction.
package committer

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
)

// CommitPlan is a typed wrapper around Spanner mutations for the Golden Mutation Pattern.
// It collects mutations from multiple sources and applies them atomically.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

// NewPlan creates a new empty CommitPlan.
func NewPlan() *CommitPlan {
	return &CommitPlan{
		mutations: make([]*spanner.Mutation, 0),
	}
}

// Add adds a mutation to the plan.
// Nil mutations are silently ignored for convenience.
func (cp *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		cp.mutations = append(cp.mutations, mut)
	}
}

// AddMultiple adds multiple mutations to the plan.
func (cp *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, mut := range muts {
		cp.Add(mut)
	}
}

// Mutations returns all collected mutations.
func (cp *CommitPlan) Mutations() []*spanner.Mutation {
	if cp == nil {
		return nil
	}
	return cp.mutations
}

// IsEmpty returns true if the plan has no mutations.
func (cp *CommitPlan) IsEmpty() bool {
	return cp == nil || len(cp.mutations) == 0
}

// Count returns the number of mutations in the plan.
func (cp *CommitPlan) Count() int {
	if cp == nil {
		return 0
	}
	return len(cp.mutations)
}

// Committer provides transaction execution for CommitPlans.
type Committer struct {
	client    *spanner.Client
	txTimeout time.Duration
}

// NewCommitter creates a new Committer. A positive txTimeout bounds every
// transaction in addition to the caller's deadline.
func NewCommitter(client *spanner.Client, txTimeout time.Duration) *Committer {
	return &Committer{client: client, txTimeout: txTimeout}
}

func (c *Committer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.txTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.txTimeout)
}

// Apply executes the CommitPlan atomically as a blind write.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("failed to apply commit plan: %w", err)
	}
	return nil
}

// TxnFunc reads inside a read-write transaction and returns the mutations to
// buffer. A nil or empty plan commits nothing.
type TxnFunc func(ctx context.Context, txn *spanner.ReadWriteTransaction) (*CommitPlan, error)

// RunReadWrite runs fn in a read-write transaction and buffers the plan it
// returns before commit. Errors returned by fn are wrapped, so errors.Is
// still matches domain sentinels.
func (c *Committer) RunReadWrite(ctx context.Context, fn TxnFunc) (time.Time, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	commitTS, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		plan, err := fn(ctx, txn)
		if err != nil {
			return err
		}
		if plan.IsEmpty() {
			return nil
		}
		return txn.BufferWrite(plan.Mutations())
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("transaction failed: %w", err)
	}
	return commitTS, nil
}

// ReadFunc reads from a consistent snapshot.
type ReadFunc func(ctx context.Context, txn *spanner.ReadOnlyTransaction) error

// RunReadOnly runs fn on a multi-use read-only transaction so every read in
// fn sees the same snapshot.
func (c *Committer) RunReadOnly(ctx context.Context, fn ReadFunc) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	txn := c.client.ReadOnlyTransaction()
	defer txn.Close()
	return fn(ctx, txn)
}
