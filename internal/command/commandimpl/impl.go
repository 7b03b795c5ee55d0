package commandimpl

import (
	"context"
	"errors"
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-media-pipeline/internal/batch"
	"github.com/orgball2608/insta-media-pipeline/internal/command"
	"github.com/orgball2608/insta-media-pipeline/internal/finder"
	"github.com/orgball2608/insta-media-pipeline/internal/notifier"
	"github.com/orgball2608/insta-media-pipeline/internal/orchestrator"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Orchestrator *orchestrator.Orchestrator
	Batch        batch.Client
	Finder       finder.Client
	Notifier     notifier.Client
	Logger       logger.Logger
	Config       *config.Config
}

type CommandImpl struct {
	Orchestrator *orchestrator.Orchestrator
	Batch        batch.Client
	Finder       finder.Client
	Notifier     notifier.Client
	Logger       logger.Logger
	Config       *config.Config
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Orchestrator: opts.Orchestrator,
		Batch:        opts.Batch,
		Finder:       opts.Finder,
		Notifier:     opts.Notifier,
		Logger:       opts.Logger,
		Config:       opts.Config,
	}
}

var _ command.Client = (*CommandImpl)(nil)

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Notifier.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Notifier.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly. Restarting handler...")
				return errors.New("telegram updates channel closed")
			}

			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				if u.Message == nil {
					return
				}

				c.Logger.Info("Message received", "from", u.Message.From.UserName, "text", u.Message.Text)

				if u.Message.IsCommand() {
					if err := c.processCommand(ctx, u); err != nil {
						c.Logger.Error("Error processing command",
							"command", u.Message.Command(),
							"error", err)
					}
				}
			}(update)
		}
	}
}
