package app

import (
	"context"
	"fmt"

	"github.com/painel-vendas/painel/internal/goals"
	"github.com/painel-vendas/painel/internal/invoicing"
	"github.com/painel-vendas/painel/internal/platform/db"
)

// Recorder observes outbound calls; *observability.Metrics satisfies it.
type Recorder interface {
	goals.Recorder
	invoicing.Recorder
}

// NewInvoicingClient builds the Omie client from cfg.
func NewInvoicingClient(cfg *Config, recorder Recorder) *invoicing.Client {
	return invoicing.NewClient(invoicing.Config{
		BaseURL:   cfg.OmieBaseURL,
		AppKey:    cfg.OmieAppKey,
		AppSecret: cfg.OmieAppSecret,
		Timeout:   cfg.OmieTimeout,
	}, recorder)
}

// NewGoalStore opens the goal store named by cfg.GoalSource. The returned
// close func releases any pool and is never nil.
func NewGoalStore(ctx context.Context, cfg *Config, recorder Recorder) (goals.Store, func(), error) {
	noop := func() {}
	switch cfg.GoalSource() {
	case GoalSourceFile:
		return goals.NewFileStore(cfg.GoalsFile), noop, nil
	case GoalSourcePostgres:
		pool, err := db.New(ctx, cfg.GoalsPGDSN)
		if err != nil {
			return nil, noop, err
		}
		return goals.NewPostgresStore(pool, recorder), pool.Close, nil
	case GoalSourceREST:
		return goals.NewRESTStore(goals.RESTConfig{
			BaseURL:    cfg.SupabaseURL,
			ServiceKey: cfg.SupabaseServiceKey,
			Timeout:    cfg.GoalsTimeout,
		}, recorder), noop, nil
	default:
		return nil, noop, fmt.Errorf("app: no goal source configured")
	}
}
