package media

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("MediaRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) Create(ctx context.Context, record domain.MediaRecord) (int64, error) {
	query, args, err := repositories.SqBuilder.
		Insert("media_items").
		Columns("post_id", "username", "category", "content_type", "strategy", "local_path", "remote_url", "upscaled", "created_at").
		Values(record.PostID, record.Username, string(record.Category), string(record.ContentType), record.Strategy, record.LocalPath, record.RemoteURL, record.Upscaled, time.Now()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var id int64
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (p *Pgx) GetByUsername(ctx context.Context, username string) ([]*domain.MediaRecord, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "post_id", "username", "category", "content_type", "strategy", "local_path", "remote_url", "upscaled", "created_at").
		From("media_items").
		Where(sq.Eq{"username": username}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.MediaRecord
	for rows.Next() {
		var r domain.MediaRecord
		var category, contentType string
		if err := rows.Scan(&r.ID, &r.PostID, &r.Username, &category, &contentType, &r.Strategy, &r.LocalPath, &r.RemoteURL, &r.Upscaled, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Category = domain.MediaCategory(category)
		r.ContentType = domain.ContentType(contentType)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *Pgx) Exists(ctx context.Context, postID string) (bool, error) {
	query, args, err := repositories.SqBuilder.
		Select("1").
		From("media_items").
		Where(sq.Eq{"post_id": postID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, repositories.ErrBadQuery
	}

	var one int
	err = p.pg.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Pgx) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	query, args, err := repositories.SqBuilder.
		Delete("media_items").
		Where(sq.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
