package commandimpl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/orgball2608/insta-media-pipeline/pkg/formatter"
)

// defaultMinFollowers drops accounts too small to be worth a batch slot.
const defaultMinFollowers = 10000

func (c *CommandImpl) handleFindCommand(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		c.Notifier.ReplyTo(chatID, "Please provide a category. Example: /find photography")
		return nil
	}

	category := fields[0]
	limit := 0
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[1]); err == nil {
			limit = n
		}
	}

	accounts, err := c.Finder.Discover(ctx, category, limit, defaultMinFollowers)
	if err != nil {
		c.Notifier.ReplyTo(chatID, fmt.Sprintf("Discovery failed: %v", err))
		return err
	}
	if len(accounts) == 0 {
		c.Notifier.ReplyTo(chatID, "No accounts matched.")
		return nil
	}

	if err := c.Finder.WriteAccountsFile(accounts, c.Config.Batch.AccountsFile); err != nil {
		c.Notifier.ReplyTo(chatID, fmt.Sprintf("Could not save the accounts file: %v", err))
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d accounts for %s:\n", len(accounts), category))
	for i, account := range accounts {
		sb.WriteString(fmt.Sprintf("%d. @%s (%s, %s followers)\n",
			i+1, account.Username, account.FullName, formatter.FormatNumber(account.FollowersCount)))
	}
	sb.WriteString("\nThe accounts file is updated, run /batch to fetch them.")
	c.Notifier.ReplyTo(chatID, sb.String())
	return nil
}
