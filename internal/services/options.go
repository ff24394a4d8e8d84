package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/light-bringer/pricing-service/internal/app/price/queries/get_effective_price"
	"github.com/light-bringer/pricing-service/internal/app/price/queries/list_price_changes"
	"github.com/light-bringer/pricing-service/internal/app/price/queries/list_price_timeline"
	"github.com/light-bringer/pricing-service/internal/app/price/repo"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/cancel_future_price"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/sync_price"
	"github.com/light-bringer/pricing-service/internal/app/price/usecases/validate_price"
	"github.com/light-bringer/pricing-service/internal/pkg/clock"
	"github.com/light-bringer/pricing-service/internal/pkg/committer"
	"github.com/light-bringer/pricing-service/internal/pkg/config"
	"github.com/light-bringer/pricing-service/internal/pkg/exchangerate"
	httptransport "github.com/light-bringer/pricing-service/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	RedisClient   *redis.Client
	PriceHandler  *httptransport.PriceHandler
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg *config.Config, log *zap.Logger) (*ServiceOptions, error) {
	// 1. Initialize Spanner client
	spannerClient, err := spanner.NewClient(ctx, cfg.Spanner.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}
	opts := &ServiceOptions{SpannerClient: spannerClient}

	// 2. Exchange rate: redis cache first, configured fallback second
	rates, err := opts.exchangeRates(ctx, cfg, log)
	if err != nil {
		opts.Close()
		return nil, err
	}

	// 3. Create infrastructure components
	clk := clock.NewRealClock()
	comm := committer.NewCommitter(spannerClient, cfg.Spanner.TxTimeout)

	// 4. Create repositories
	intervalRepo := repo.NewPriceIntervalRepo()
	changeLogRepo := repo.NewChangeLogRepo()
	scopeRepo := repo.NewScopeLockRepo()
	productRepo := repo.NewProductRepo()
	outboxRepo := repo.NewOutboxRepo()
	readModel := repo.NewReadModel(spannerClient, intervalRepo, changeLogRepo)

	// 5. Create command use cases (write operations)
	syncPriceUseCase := sync_price.NewInteractor(intervalRepo, changeLogRepo, scopeRepo, productRepo, outboxRepo, comm, rates, clk, log)
	validatePriceUseCase := validate_price.NewInteractor(intervalRepo, scopeRepo, productRepo, comm, clk, log)
	cancelFutureUseCase := cancel_future_price.NewInteractor(intervalRepo, scopeRepo, outboxRepo, comm, clk, log)

	// 6. Create query use cases (read operations)
	effectivePriceQuery := get_effective_price.NewQuery(readModel, clk)
	timelineQuery := list_price_timeline.NewQuery(readModel, clk)
	changesQuery := list_price_changes.NewQuery(readModel)

	// 7. Create HTTP handler
	opts.PriceHandler = httptransport.NewPriceHandler(
		syncPriceUseCase,
		validatePriceUseCase,
		cancelFutureUseCase,
		effectivePriceQuery,
		timelineQuery,
		changesQuery,
	)
	return opts, nil
}

func (s *ServiceOptions) exchangeRates(ctx context.Context, cfg *config.Config, log *zap.Logger) (exchangerate.Resolver, error) {
	fallback, err := cfg.FallbackRate()
	if err != nil {
		return nil, err
	}
	resolvers := make([]exchangerate.Resolver, 0, 2)

	if cfg.Redis.Enabled {
		s.RedisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		// The cache is optional; an unreachable server only disables it until it comes back.
		if err := s.RedisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis is unreachable, exchange rates fall back to config", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		resolvers = append(resolvers, exchangerate.NewRedis(s.RedisClient, cfg.Redis.RateKey, cfg.Redis.Timeout))
	}
	resolvers = append(resolvers, exchangerate.NewStatic(fallback))

	return exchangerate.NewChain(log, resolvers...), nil
}

// HealthCheck runs a trivial query against Spanner.
func (s *ServiceOptions) HealthCheck(ctx context.Context) error {
	iter := s.SpannerClient.Single().Query(ctx, spanner.Statement{SQL: "SELECT 1"})
	defer iter.Stop()
	if _, err := iter.Next(); err != nil {
		return fmt.Errorf("spanner health check failed: %w", err)
	}
	return nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.RedisClient != nil {
		_ = s.RedisClient.Close()
	}
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
