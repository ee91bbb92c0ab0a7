package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRatePerSecond = 1.0
	DefaultFetchTimeout  = 30 * time.Second

	// maxDocumentBytes caps how much of a response body is read.
	maxDocumentBytes = 8 << 20
)

// Document is one fetched source page, reduced to plain text.
type Document struct {
	URL   string
	Title string
	Text  string

	// Hash is the SHA-256 hex digest of the raw response body, used for
	// change detection.
	Hash string
}

// Fetcher retrieves source pages over plain HTTP with a politeness rate
// limit shared across all fetches.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a fetcher allowing ratePerSecond requests sustained,
// with a burst of one.
func NewFetcher(ratePerSecond float64, timeout time.Duration) *Fetcher {
	if ratePerSecond <= 0 {
		ratePerSecond = DefaultRatePerSecond
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
	}
}

// Fetch retrieves the URL and returns the hashed, text-extracted document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("awaiting rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}

	digest := sha256.Sum256(body)

	return &Document{
		URL:   url,
		Title: extractTitle(string(body)),
		Text:  extractText(string(body)),
		Hash:  hex.EncodeToString(digest[:]),
	}, nil
}

var (
	titlePattern  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	scriptPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern  = regexp.MustCompile(`[ \t]+`)
	blankPattern  = regexp.MustCompile(`\n{3,}`)
)

func extractTitle(html string) string {
	m := titlePattern.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractText strips markup from an HTML page. Non-HTML bodies pass through
// unchanged apart from whitespace normalization.
func extractText(html string) string {
	text := scriptPattern.ReplaceAllString(html, " ")
	text = tagPattern.ReplaceAllString(text, "\n")
	text = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`).Replace(text)
	text = spacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	return blankPattern.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")
}
