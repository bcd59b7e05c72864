package goals

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/painel-vendas/painel/internal/observability"
	"github.com/painel-vendas/painel/internal/platform/db"
)

const (
	selectGoalsSQL = `SELECT id, mes::text, tipo, titulo
FROM metas
WHERE mes = $1::date
ORDER BY id`

	selectComponentsSQL = `SELECT id, meta_id, metrica, alvo::float8, regra_campo, COALESCE(regra_padroes, '{}'::text[])
FROM meta_componentes
WHERE meta_id = ANY($1)
ORDER BY id`
)

// PostgresStore reads goals straight from the store's Postgres database.
type PostgresStore struct {
	pool     db.TxBeginner
	recorder Recorder
}

// NewPostgresStore wires a pool (usually *pgxpool.Pool). recorder may be nil.
func NewPostgresStore(pool db.TxBeginner, recorder Recorder) *PostgresStore {
	return &PostgresStore{pool: pool, recorder: recorder}
}

// GoalsForMonth implements Store.
func (s *PostgresStore) GoalsForMonth(ctx context.Context, month string) (out []Goal, err error) {
	start := time.Now()
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveUpstream(observability.UpstreamGoals, start, err)
		}
	}()

	var goalRows []goalRow
	var componentRows []componentRow
	err = db.WithReadOnlyTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		goalRows, err = queryGoals(ctx, tx, month)
		if err != nil || len(goalRows) == 0 {
			return err
		}
		componentRows, err = queryComponents(ctx, tx, goalIDs(goalRows))
		return err
	})
	if err != nil {
		return nil, &StoreError{Op: "query goals", Err: err}
	}
	return assemble(goalRows, componentRows), nil
}

func queryGoals(ctx context.Context, tx pgx.Tx, month string) ([]goalRow, error) {
	rows, err := tx.Query(ctx, selectGoalsSQL, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []goalRow
	for rows.Next() {
		var g goalRow
		var title pgtype.Text
		if err := rows.Scan(&g.ID, &g.Month, &g.Kind, &title); err != nil {
			return nil, err
		}
		if title.Valid {
			g.Title = &title.String
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func queryComponents(ctx context.Context, tx pgx.Tx, ids []int64) ([]componentRow, error) {
	rows, err := tx.Query(ctx, selectComponentsSQL, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []componentRow
	for rows.Next() {
		var c componentRow
		var target pgtype.Float8
		var field pgtype.Text
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Metric, &target, &field, &c.Patterns); err != nil {
			return nil, err
		}
		if target.Valid {
			c.Target = &target.Float64
		}
		if field.Valid {
			c.Field = &field.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
