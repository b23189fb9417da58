package probe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/abdul-hamid-achik/echocheck/packages/http"
)

const (
	// DefaultTimeout bounds each probe request.
	DefaultTimeout = 10 * time.Second
	// SnippetLength is the number of runes of body kept in a Result.
	SnippetLength = 200
	// Ellipsis follows every snippet.
	Ellipsis = "..."
)

// Result is the outcome of probing one URL. Err is set when no response was
// received, otherwise StatusCode and Snippet are.
type Result struct {
	URL        string
	StatusCode int
	Snippet    string
	Title      string
	Duration   time.Duration
	Err        error
}

func (r *Result) OK() bool {
	return r.Err == nil
}

type Options struct {
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	Headers map[string]string
	Logger  *slog.Logger
}

// Run probes each URL in order.
func Run(ctx context.Context, client *http.Client, urls []string, opts Options) []*Result {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]*Result, 0, len(urls))
	for _, u := range urls {
		r := probeOne(ctx, client, u, timeout, opts.Headers)
		if r.Err != nil {
			logger.Debug("probe failed", "url", u, "duration", r.Duration, "error", r.Err)
		} else {
			logger.Debug("probe", "url", u, "status", r.StatusCode, "duration", r.Duration)
		}
		results = append(results, r)
	}
	return results
}

func probeOne(ctx context.Context, client *http.Client, url string, timeout time.Duration, headers map[string]string) *Result {
	result := &Result{URL: url}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := client.Get(ctx, url, headers)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Snippet = Snippet(resp.BodyString(), SnippetLength)
	if resp.IsHTML() {
		result.Title = Title(resp.Body)
	}
	return result
}

// Snippet returns the first n runes of body followed by Ellipsis. The
// ellipsis is appended even when body is shorter than n.
func Snippet(body string, n int) string {
	if utf8.RuneCountInString(body) <= n {
		return body + Ellipsis
	}
	i := 0
	for pos := range body {
		if i == n {
			return body[:pos] + Ellipsis
		}
		i++
	}
	return body + Ellipsis
}

// Title returns the trimmed text of the document's <title>, or "".
func Title(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
