package batchrun

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("BatchRunRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, summary domain.BatchSummary) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Insert("batch_runs").
		Columns("total_accounts", "successful_accounts", "failed_accounts", "total_images", "finished_at").
		Values(summary.Stats.TotalAccounts, summary.Stats.SuccessfulAccounts, summary.Stats.FailedAccounts, summary.Stats.TotalImages, time.Now()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Pgx) GetRecent(ctx context.Context, limit int) ([]*domain.BatchRunRecord, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "total_accounts", "successful_accounts", "failed_accounts", "total_images", "finished_at").
		From("batch_runs").
		OrderBy("finished_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.BatchRunRecord
	for rows.Next() {
		var r domain.BatchRunRecord
		if err := rows.Scan(&r.ID, &r.TotalAccounts, &r.SuccessfulAccounts, &r.FailedAccounts, &r.TotalImages, &r.FinishedAt); err != nil {
			return nil, err
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
