package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/notifier"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
)

// Noop swallows notifications when no bot token is configured.
type Noop struct {
	logger logger.Logger
}

func NewNoop(log logger.Logger) *Noop {
	return &Noop{logger: log.WithComponent("NoopNotifier")}
}

var _ notifier.Client = (*Noop)(nil)

func (n *Noop) SendMessage(message string) {
	n.logger.Debug("Notification suppressed, no bot configured", "message", message)
}

func (n *Noop) ReplyTo(int64, string) {}

func (n *Noop) SendBatchSummary(domain.BatchSummary) {}

func (n *Noop) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return nil }

func (n *Noop) StopReceivingUpdates() {}
