package telegramimpl

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/notifier"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/formatter"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type TelegramImpl struct {
	TgBot  *tgbotapi.BotAPI
	Logger logger.Logger
	Config *config.Config
}

func New(opts Opts) (*TelegramImpl, error) {
	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		opts.Logger.Error("Error creating bot", "Error", err)
		return nil, err
	}

	return &TelegramImpl{
		TgBot:  tgBot,
		Logger: opts.Logger,
		Config: opts.Config,
	}, nil
}

var _ notifier.Client = (*TelegramImpl)(nil)

func (tg *TelegramImpl) SendMessage(message string) {
	tg.ReplyTo(tg.Config.Telegram.User, message)
}

func (tg *TelegramImpl) ReplyTo(chatID int64, message string) {
	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := tg.TgBot.Send(msg); err != nil {
		tg.Logger.Error("Error sending message",
			"chatID", chatID,
			"error", err)
		return
	}
	tg.Logger.Info("Message sent", "chatID", chatID)
}

func (tg *TelegramImpl) SendBatchSummary(summary domain.BatchSummary) {
	var sb strings.Builder
	sb.WriteString("Batch run finished\n")
	sb.WriteString(fmt.Sprintf("Accounts: %d total, %d succeeded, %d failed\n",
		summary.Stats.TotalAccounts, summary.Stats.SuccessfulAccounts, summary.Stats.FailedAccounts))
	sb.WriteString(fmt.Sprintf("Media items: %s\n", formatter.FormatNumber(summary.Stats.TotalImages)))

	for _, failure := range summary.FailedDownloads {
		sb.WriteString(fmt.Sprintf("@%s failed: %s\n", failure.Username, failure.Error))
	}

	tg.SendMessage(sb.String())
}

func (tg *TelegramImpl) GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return tg.TgBot.GetUpdatesChan(u)
}

func (tg *TelegramImpl) StopReceivingUpdates() {
	tg.TgBot.StopReceivingUpdates()
}
