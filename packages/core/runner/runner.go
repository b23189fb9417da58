package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/assertions"
	"github.com/abdul-hamid-achik/echocheck/packages/checks"
	"github.com/abdul-hamid-achik/echocheck/packages/http"
	"github.com/google/uuid"
)

// DefaultBaseURL is the public service checks run against by default
const DefaultBaseURL = "https://httpbin.org"

type Runner struct {
	client *http.Client
	config *Config
	logger *slog.Logger
}

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	FollowRedirect bool
	ValidateSSL    bool
	Proxy          string
	DefaultHeaders map[string]string
	RateLimit      float64
	Logger         *slog.Logger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{FollowRedirect: true, ValidateSSL: true}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.FollowRedirect),
		http.WithValidateSSL(cfg.ValidateSSL),
		http.WithRateLimit(cfg.RateLimit),
	}
	if cfg.Timeout > 0 {
		clientOpts = append(clientOpts, http.WithTimeout(cfg.Timeout))
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.DefaultHeaders) > 0 {
		clientOpts = append(clientOpts, http.WithDefaultHeaders(cfg.DefaultHeaders))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Runner{
		client: http.NewClient(clientOpts...),
		config: cfg,
		logger: logger,
	}
}

// FailureKind tells assertion failures apart from everything else.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureAssertion
	FailureError
)

func (k FailureKind) String() string {
	switch k {
	case FailureAssertion:
		return "assertion"
	case FailureError:
		return "error"
	default:
		return "none"
	}
}

type RunResult struct {
	ID       string
	BaseURL  string
	Results  []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
}

// Total is the number of checks run. It always equals Passed + Failed.
func (r *RunResult) Total() int {
	return len(r.Results)
}

// OK reports whether every check passed.
func (r *RunResult) OK() bool {
	return r.Failed == 0
}

type CheckResult struct {
	Name        string
	Description string
	Passed      bool
	Kind        FailureKind
	Message     string
	Error       error
	Duration    time.Duration
	Assertions  []*assertions.Result
	Exchanges   []*checks.Exchange
}

// Run executes every check in order. A failing check never stops the ones
// after it.
func (r *Runner) Run(ctx context.Context, list []checks.Check) *RunResult {
	start := time.Now()
	result := &RunResult{
		ID:      uuid.NewString(),
		BaseURL: r.config.BaseURL,
		Results: make([]*CheckResult, 0, len(list)),
	}

	r.logger.Debug("run started", "id", result.ID, "base_url", result.BaseURL, "checks", len(list))

	for _, c := range list {
		checkResult := r.RunCheck(ctx, c)
		result.Results = append(result.Results, checkResult)
		if checkResult.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	result.Duration = time.Since(start)
	r.logger.Debug("run finished",
		"id", result.ID,
		"passed", result.Passed,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return result
}

// RunCheck runs one check inside its own failure boundary.
func (r *Runner) RunCheck(ctx context.Context, c checks.Check) *CheckResult {
	session := checks.NewSession(r.client, r.config.BaseURL, r.logger.With("check", c.Name))

	start := time.Now()
	err := invoke(ctx, c, session)

	result := &CheckResult{
		Name:        c.Name,
		Description: c.Description,
		Duration:    time.Since(start),
		Assertions:  session.Results(),
		Exchanges:   session.Exchanges(),
	}

	switch {
	case err == nil:
		result.Passed = true
	case assertions.IsFailure(err):
		result.Kind = FailureAssertion
		result.Error = err
		result.Message = err.Error()
	default:
		result.Kind = FailureError
		result.Error = err
		result.Message = err.Error()
	}

	if result.Passed {
		r.logger.Debug("check passed", "check", c.Name, "duration", result.Duration)
	} else {
		r.logger.Debug("check failed", "check", c.Name, "kind", result.Kind.String(), "error", result.Message)
	}
	return result
}

func invoke(ctx context.Context, c checks.Check, s *checks.Session) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("check %s panicked: %v", c.Name, p)
		}
	}()

	if c.Run == nil {
		return fmt.Errorf("check %s has no procedure", c.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Run(ctx, s)
}
