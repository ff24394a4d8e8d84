package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/spanner"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/pricing-service/internal/models/m_outbox"
	"github.com/light-bringer/pricing-service/internal/pkg/committer"
	"github.com/light-bringer/pricing-service/internal/pkg/config"
	"github.com/light-bringer/pricing-service/internal/pkg/logger"
	"github.com/light-bringer/pricing-service/internal/pkg/query"
)

const deleteBatchSize = 500

// Options for the outbox cleanup job
type Options struct {
	SpannerDB          string
	CompletedRetention time.Duration
	FailedRetention    time.Duration
	DryRun             bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := Options{}
	flag.StringVar(&opts.SpannerDB, "database", cfg.Spanner.Database, "Spanner database (format: projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.DurationVar(&opts.CompletedRetention, "completed-retention", cfg.Outbox.CompletedRetention, "Retention for completed events")
	flag.DurationVar(&opts.FailedRetention, "failed-retention", cfg.Outbox.FailedRetention, "Retention for failed events")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without actually deleting")
	flag.Parse()

	zl, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cleanupOutbox(context.Background(), opts, zl); err != nil {
		zl.Fatal("Cleanup failed", zap.Error(err))
	}
	zl.Info("Cleanup completed successfully")
}

func cleanupOutbox(ctx context.Context, opts Options, zl *zap.Logger) error {
	client, err := spanner.NewClient(ctx, opts.SpannerDB)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	now := time.Now().UTC()
	completedCutoff := now.Add(-opts.CompletedRetention)
	failedCutoff := now.Add(-opts.FailedRetention)

	zl.Info("Starting outbox cleanup",
		zap.Time("completed_cutoff", completedCutoff),
		zap.Time("failed_cutoff", failedCutoff),
		zap.Bool("dry_run", opts.DryRun),
	)

	expired, err := expiredEvents(ctx, client.Single(), completedCutoff, failedCutoff)
	if err != nil {
		return err
	}

	byStatus := make(map[string]int)
	for _, e := range expired {
		byStatus[e.Status]++
	}
	for status, n := range byStatus {
		zl.Info("Expired events", zap.String("status", status), zap.Int("count", n))
	}

	if opts.DryRun {
		zl.Info("DRY RUN: nothing deleted", zap.Int("would_delete", len(expired)))
		return nil
	}
	if len(expired) == 0 {
		zl.Info("No old events to delete")
		return nil
	}

	comm := committer.NewCommitter(client, 0)
	model := m_outbox.NewModel()
	for _, batch := range batches(expired, deleteBatchSize) {
		plan := committer.NewPlan()
		for _, e := range batch {
			plan.Add(model.DeleteMut(e.EventID))
		}
		if err := comm.Apply(ctx, plan); err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		zl.Info("Deleted events", zap.Int("count", plan.Count()))
	}
	return nil
}

// expiredStatement selects processed events older than the later cutoff;
// the per-status retention is applied by m_outbox.Expired.
func expiredStatement(completedCutoff, failedCutoff time.Time) spanner.Statement {
	cutoff := completedCutoff
	if failedCutoff.After(cutoff) {
		cutoff = failedCutoff
	}
	return query.From(m_outbox.TableName).
		Select(m_outbox.NewModel().ReadColumns()...).
		Where(query.Or(
			query.Eq(m_outbox.Status, m_outbox.StatusCompleted),
			query.Eq(m_outbox.Status, m_outbox.StatusFailed),
		)).
		Where(query.Lt(m_outbox.ProcessedAt, cutoff)).
		Build()
}

type queryer interface {
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

func expiredEvents(ctx context.Context, r queryer, completedCutoff, failedCutoff time.Time) ([]*m_outbox.Data, error) {
	iter := r.Query(ctx, expiredStatement(completedCutoff, failedCutoff))
	defer iter.Stop()

	var out []*m_outbox.Data
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query events: %w", err)
		}
		var data m_outbox.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("failed to parse row: %w", err)
		}
		if m_outbox.Expired(&data, completedCutoff, failedCutoff) {
			out = append(out, &data)
		}
	}
	return out, nil
}

func batches(events []*m_outbox.Data, size int) [][]*m_outbox.Data {
	var out [][]*m_outbox.Data
	for len(events) > 0 {
		n := size
		if len(events) < n {
			n = len(events)
		}
		out = append(out, events[:n])
		events = events[n:]
	}
	return out
}
