// Package nodescraper isolates the headless-browser subprocess: it owns
// writing the instruction script, invoking node with a bounded timeout, and
// recovering the result JSON from whatever the process printed.
package nodescraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type Runner struct {
	nodeBin string
	workDir string
	timeout time.Duration
	logger  logger.Logger
}

func New(opts Opts) *Runner {
	return &Runner{
		nodeBin: opts.Config.Scraper.NodeBin,
		workDir: opts.Config.Scraper.WorkDir,
		timeout: opts.Config.Scraper.Timeout,
		logger:  opts.Logger.WithComponent("NodeScraper"),
	}
}

// Scrape runs the puppeteer script for one username and returns the raw
// JSON payload recovered from the process output. Timeouts, non-zero exits
// and unparsable output all surface as plain errors.
func (r *Runner) Scrape(ctx context.Context, username string, count int) ([]byte, error) {
	if err := os.MkdirAll(r.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scraper work dir: %w", err)
	}

	scriptPath := filepath.Join(r.workDir, "scraper_script.js")
	if err := os.WriteFile(scriptPath, []byte(renderScript(username, count)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write scraper script: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.nodeBin, scriptPath)
	output, err := cmd.CombinedOutput()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("scraper timed out for @%s: %w", username, runCtx.Err())
	}
	if err != nil {
		r.logger.Warn("Scraper process failed", "username", username, "error", err, "output", truncate(output, 500))
		return nil, fmt.Errorf("scraper process failed: %w", err)
	}

	payload, err := ExtractJSON(output)
	if err != nil {
		r.logger.Warn("Scraper output had no JSON", "username", username, "output", truncate(output, 500))
		return nil, err
	}
	return payload, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
