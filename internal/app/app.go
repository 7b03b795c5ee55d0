package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-media-pipeline/internal/batch"
	"github.com/orgball2608/insta-media-pipeline/internal/batch/batchimpl"
	"github.com/orgball2608/insta-media-pipeline/internal/command"
	"github.com/orgball2608/insta-media-pipeline/internal/command/commandimpl"
	"github.com/orgball2608/insta-media-pipeline/internal/finder/finderimpl"
	"github.com/orgball2608/insta-media-pipeline/internal/migrations"
	"github.com/orgball2608/insta-media-pipeline/internal/nodescraper"
	"github.com/orgball2608/insta-media-pipeline/internal/notifier/telegramimpl"
	"github.com/orgball2608/insta-media-pipeline/internal/orchestrator"
	"github.com/orgball2608/insta-media-pipeline/internal/processor/processorimpl"
	"github.com/orgball2608/insta-media-pipeline/internal/ratelimit"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/batchrun"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/media"
	"github.com/orgball2608/insta-media-pipeline/internal/server"
	"github.com/orgball2608/insta-media-pipeline/internal/storage/s3impl"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy/strategyimpl"
	"github.com/orgball2608/insta-media-pipeline/internal/upscale/replicateimpl"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/orgball2608/insta-media-pipeline/pkg/pgx"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
	),
	ratelimit.Module,
	nodescraper.Module,
	strategyimpl.Module,
	orchestrator.Module,
	finderimpl.Module,
	media.Module,
	batchrun.Module,
	s3impl.Module,
	replicateimpl.Module,
	processorimpl.Module,
	telegramimpl.Module,
	batchimpl.Module,
	server.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Embed)
	defer goose.SetBaseFS(nil)

	return goose.Up(db, ".")
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config,
	batchClient batch.Client, cmdClient command.Client, _ *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx := context.Background()

			if err := batchClient.ScheduleBatchRuns(ctx); err != nil {
				log.Error("Failed to schedule batch runs", "Error", err)
				return err
			}

			if err := batchClient.ScheduleMediaCleanup(ctx); err != nil {
				log.Error("Failed to schedule media cleanup", "Error", err)
				return err
			}

			if cfg.Telegram.Token != "" {
				go func() {
					if err := cmdClient.HandleCommand(ctx); err != nil {
						log.Error("Command handler stopped", "Error", err)
					}
				}()
			}
			return nil
		},
	})
}
