// Package notifier pushes operator-facing messages about batch runs and
// receives operator commands from the bot.
package notifier

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

type Client interface {
	// SendMessage delivers a plain text message to the configured operator;
	// delivery failures are logged by the implementation, never returned to
	// the pipeline.
	SendMessage(message string)

	// ReplyTo delivers a plain text message to a specific chat.
	ReplyTo(chatID int64, message string)

	// SendBatchSummary delivers a human-readable digest of a batch run.
	SendBatchSummary(summary domain.BatchSummary)

	// GetUpdatesChan opens the incoming update stream. Implementations
	// without an interactive surface return a nil channel.
	GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}
