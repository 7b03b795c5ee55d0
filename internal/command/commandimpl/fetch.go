package commandimpl

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/pkg/formatter"
)

const helpMessage = `Welcome to the media pipeline bot.

Available commands:

/fetch <username> - Fetch and process an account's media now.
/profile <username> - Show what the acquisition chain knows about an account.
/batch - Run the configured batch file immediately.
/find <category> [limit] - Discover accounts and refresh the batch file.

Type /help at any time to see this guide.`

func (c *CommandImpl) processCommand(ctx context.Context, update tgbotapi.Update) error {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID

	switch command {
	case "start", "help":
		c.Notifier.ReplyTo(chatID, helpMessage)
		return nil
	case "fetch":
		return c.handleFetchCommand(ctx, chatID, args)
	case "profile":
		return c.handleProfileCommand(ctx, chatID, args)
	case "batch":
		return c.handleBatchCommand(ctx, chatID)
	case "find":
		return c.handleFindCommand(ctx, chatID, args)
	default:
		c.Notifier.ReplyTo(chatID, "Unknown command. Type /help to see the list of available commands.")
		return nil
	}
}

func (c *CommandImpl) handleFetchCommand(ctx context.Context, chatID int64, args string) error {
	username := sanitizeUsername(args)
	if username == "" {
		c.Notifier.ReplyTo(chatID, "Please provide a username. Example: /fetch <username>")
		return nil
	}

	c.Notifier.ReplyTo(chatID, fmt.Sprintf("Fetching @%s, this can take a while...", username))

	runCtx, cancel := context.WithTimeout(ctx, c.Config.Batch.AccountTimeout)
	defer cancel()

	items, result, err := c.Batch.RunAccount(runCtx, domain.Account{Username: username})
	if err != nil {
		c.Notifier.ReplyTo(chatID, fmt.Sprintf("Fetch for @%s failed: %v", username, err))
		return err
	}

	c.Notifier.ReplyTo(chatID, formatFetchReport(username, items, result))
	return nil
}

func formatFetchReport(username string, items []domain.ProcessedItem, result domain.FetchResult) string {
	if result.PrivateAccount {
		return fmt.Sprintf("@%s is a private account, nothing was fetched.", username)
	}

	succeeded := 0
	for _, item := range items {
		if item.Succeeded() {
			succeeded++
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@%s: %d posts fetched via %s, %d/%d items processed\n",
		username, result.TotalPosts(), result.StrategyUsed, succeeded, len(items)))
	for _, item := range items {
		if !item.Succeeded() {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", item.Post.ID, item.Reason))
		}
	}
	return sb.String()
}

func (c *CommandImpl) handleProfileCommand(ctx context.Context, chatID int64, args string) error {
	username := sanitizeUsername(args)
	if username == "" {
		c.Notifier.ReplyTo(chatID, "Please provide a username. Example: /profile <username>")
		return nil
	}

	profile, err := c.Orchestrator.Profile(ctx, username)
	if err != nil {
		c.Notifier.ReplyTo(chatID, fmt.Sprintf("Could not resolve @%s: %v", username, err))
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("@%s (%s)\n", profile.Username, profile.FullName))
	if profile.Biography != "" {
		sb.WriteString(profile.Biography + "\n")
	}
	sb.WriteString(fmt.Sprintf("Followers: %s, following: %s, posts: %s\n",
		formatter.FormatNumber(profile.FollowersCount),
		formatter.FormatNumber(profile.FollowingCount),
		formatter.FormatNumber(profile.PostsCount)))
	if profile.IsPrivate {
		sb.WriteString("The account is private.\n")
	}

	c.Notifier.ReplyTo(chatID, sb.String())
	return nil
}

func (c *CommandImpl) handleBatchCommand(ctx context.Context, chatID int64) error {
	c.Notifier.ReplyTo(chatID, "Batch run started.")

	// The summary lands on the operator chat when the run finishes.
	if _, err := c.Batch.RunBatch(ctx); err != nil {
		c.Notifier.ReplyTo(chatID, fmt.Sprintf("Batch run failed: %v", err))
		return err
	}
	return nil
}

func sanitizeUsername(raw string) string {
	username := strings.TrimSpace(raw)
	username = strings.TrimPrefix(username, "@")
	if strings.ContainsAny(username, " \t/") {
		return ""
	}
	return username
}
