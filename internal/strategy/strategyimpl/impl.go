// Package strategyimpl contains the concrete acquisition strategies the
// fallback orchestrator runs: graph API, session API, third-party API,
// browser automation (subprocess and in-process), direct HTML scrape and
// the manual-discovery placeholder.
package strategyimpl

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const profileURLFormat = "https://www.instagram.com/%s/"

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func profileURL(username string) string {
	return fmt.Sprintf(profileURLFormat, username)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// setBrowserHeaders makes direct requests look like an ordinary browser
// session; several providers reject the default Go user agent outright.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// readBody drains a response body with a hard cap so a misbehaving provider
// cannot exhaust memory.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}
