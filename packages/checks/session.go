package checks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdul-hamid-achik/echocheck/packages/assertions"
	"github.com/abdul-hamid-achik/echocheck/packages/http"
)

// Exchange is one request sent by a check and what came back.
type Exchange struct {
	Request  *http.Request
	Response *http.Response
	Err      error
}

// Session is the per-check handle onto the target service. It records every
// exchange and assertion so reporters can narrate the check afterwards.
// A Session is used by exactly one check invocation.
type Session struct {
	client    *http.Client
	baseURL   string
	logger    *slog.Logger
	results   []*assertions.Result
	exchanges []*Exchange
}

func NewSession(client *http.Client, baseURL string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// URL joins path onto the session's base URL.
func (s *Session) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// Do sends req. Transport errors are wrapped with the method and URL.
func (s *Session) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(ctx, req)
	s.exchanges = append(s.exchanges, &Exchange{Request: req, Response: resp, Err: err})
	if err != nil {
		s.logger.Debug("request failed", "method", req.Method, "url", req.BuildURL(), "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.BuildURL(), err)
	}
	s.logger.Debug("request",
		"method", req.Method,
		"url", resp.URL,
		"status", resp.StatusCode,
		"duration", resp.Duration,
	)
	return resp, nil
}

// Expect records results in order and stops at the first one that does not
// pass. A result that could not be evaluated is returned as a plain error,
// a false one as *assertions.Failure.
func (s *Session) Expect(results ...*assertions.Result) error {
	for _, r := range results {
		s.results = append(s.results, r)
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Subject, r.Err)
		}
		if !r.Passed {
			return &assertions.Failure{Result: r}
		}
	}
	return nil
}

func (s *Session) Results() []*assertions.Result {
	return s.results
}

func (s *Session) Exchanges() []*Exchange {
	return s.exchanges
}
