package strategyimpl

import (
	"fmt"

	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"go.uber.org/fx"
)

type ChainOpts struct {
	fx.In

	Config     *config.Config
	GraphAPI   *GraphAPI
	RapidAPI   *RapidAPI
	SessionAPI *SessionAPI
	Browser    *Browser
	Chromedp   *Chromedp
	HTMLScrape *HTMLScrape
	Manual     *Manual
}

// NewChain assembles the ordered fallback chain from configuration. The
// credentialed strategies join the front of the chain when configured and
// are dropped otherwise; the configured priority list covers the rest.
func NewChain(opts ChainOpts) ([]strategy.Strategy, error) {
	byName := map[string]strategy.Strategy{
		"rapidapi":    opts.RapidAPI,
		"nodescraper": opts.Browser,
		"chromedp":    opts.Chromedp,
		"htmlscrape":  opts.HTMLScrape,
		"manual":      opts.Manual,
	}

	var chain []strategy.Strategy
	if opts.GraphAPI.Configured() {
		chain = append(chain, opts.GraphAPI)
	}
	if opts.SessionAPI.Configured() {
		chain = append(chain, opts.SessionAPI)
	}

	for _, name := range opts.Config.Providers.Priority {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider %q in priority list", name)
		}
		if name == "rapidapi" && !opts.RapidAPI.Configured() {
			continue
		}
		chain = append(chain, s)
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("no acquisition strategies configured")
	}
	return chain, nil
}

var Module = fx.Module("strategies",
	fx.Provide(
		NewGraphAPI,
		NewRapidAPI,
		NewSessionAPI,
		NewBrowser,
		NewChromedp,
		NewHTMLScrape,
		NewManual,
		NewChain,
	),
)
