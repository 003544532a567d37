package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-advisory/meridian/internal/observability"
)

// PortfolioSnapshotJob captures nightly per-client valuation totals so the
// platform can chart portfolio history without replaying price changes.
type PortfolioSnapshotJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *observability.Metrics
	clock   func() time.Time
}

// NewPortfolioSnapshotJob initialises the snapshot handler.
func NewPortfolioSnapshotJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *PortfolioSnapshotJob {
	return &PortfolioSnapshotJob{
		Pool:    pool,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the snapshot.
func (j *PortfolioSnapshotJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("portfolio snapshot: handler not configured")
	}
	var payload PortfolioSnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	err := j.capture(ctx)
	if j.Metrics != nil {
		j.Metrics.ObserveJobRun(TaskTypePortfolioSnapshot, err)
	}
	return err
}

func (j *PortfolioSnapshotJob) capture(ctx context.Context) error {
	if j.Pool == nil {
		return errors.New("portfolio snapshot: pool not configured")
	}
	start := j.clock()
	tag, err := j.Pool.Exec(ctx, `
		INSERT INTO portfolio_snapshots (client_id, currency, total_value, captured_at)
		SELECT client_id, currency, SUM(quantity * unit_price), NOW()
		FROM investments
		GROUP BY client_id, currency`)
	if err != nil {
		if j.Logger != nil {
			j.Logger.Error("portfolio snapshot", slog.Any("error", err))
		}
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("captured portfolio snapshot",
			slog.Int64("rows", tag.RowsAffected()),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return nil
}
