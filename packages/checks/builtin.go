package checks

import (
	"context"
	"embed"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/assertions"
	"github.com/abdul-hamid-achik/echocheck/packages/http"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Request inputs the built-in checks send. The echoed bodies are compared
// against these same values.
var (
	QueryParams = map[string]any{
		"page":   1,
		"limit":  10,
		"search": "python testing",
	}

	NewUser = map[string]any{
		"name":             "Алексей",
		"role":             "Тестировщик",
		"skills":           []string{"Python", "API Testing", "Pytest"},
		"experience_years": 1,
	}

	LoginForm = map[string]string{
		"username":    "test_user",
		"password":    "test_pass_123",
		"remember_me": "true",
	}

	UpdatePayload = map[string]any{
		"status":  "updated",
		"version": "2.0",
		"changes": []string{"bug fixes", "performance improvements"},
	}

	CustomHeaders = map[string]string{
		"X-Custom-Header":  "test-value-123",
		"User-Agent":       "Python-API-Tester/1.0",
		"Accept":           "application/json",
		"X-Requested-With": "XMLHttpRequest",
	}

	// StatusCodes are requested in this order from /status/{code}.
	StatusCodes = []int{200, 404, 500, 403, 201}
)

const (
	AuthUser          = "testuser"
	AuthPassword      = "testpass"
	AuthWrongPassword = "wrong_password"

	DelaySeconds = 2
	DelayTimeout = 5 * time.Second
)

// Options tune the built-in checks.
type Options struct {
	// DelayTimeout bounds the delay check's request. Zero means DelayTimeout.
	DelayTimeout time.Duration
}

// Default returns the built-in checks in run order.
func Default() []Check {
	return New(Options{})
}

// New returns the built-in checks in run order, tuned by opts.
func New(opts Options) []Check {
	delayTimeout := opts.DelayTimeout
	if delayTimeout <= 0 {
		delayTimeout = DelayTimeout
	}
	return []Check{
		{Name: "get-basic", Description: "GET echoes url, args, headers and origin", Run: GetBasic},
		{Name: "get-with-params", Description: "GET echoes query parameters as strings", Run: GetWithParams},
		{Name: "post-json", Description: "POST echoes a JSON body", Run: PostJSON},
		{Name: "post-form", Description: "POST echoes a form body", Run: PostForm},
		{Name: "put-json", Description: "PUT echoes a JSON body", Run: PutJSON},
		{Name: "delete", Description: "DELETE responds with the request url", Run: Delete},
		{Name: "status-codes", Description: "/status/{code} responds with the requested status", Run: StatusCodesCheck},
		{Name: "headers", Description: "custom request headers are echoed", Run: Headers},
		{Name: "basic-auth", Description: "basic auth accepts good and rejects bad credentials", Run: BasicAuth},
		{Name: "delay", Description: fmt.Sprintf("/delay/%d completes within %s", DelaySeconds, delayTimeout), Run: DelayWithin(delayTimeout)},
	}
}

func GetBasic(ctx context.Context, s *Session) error {
	resp, err := s.Do(ctx, http.NewRequest(nethttp.MethodGet, s.URL("/get")))
	if err != nil {
		return err
	}

	schema, err := schemaFS.ReadFile("schemas/get.json")
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	return s.Expect(
		e.Status(200),
		e.FieldEquals("url", s.URL("/get")),
		e.Schema("get.json", schema),
	)
}

func GetWithParams(ctx context.Context, s *Session) error {
	req := http.NewRequest(nethttp.MethodGet, s.URL("/get"))
	expected := make(map[string]string, len(QueryParams))
	for k, v := range QueryParams {
		req.SetQueryParam(k, v)
		expected[k] = fmt.Sprint(v)
	}

	resp, err := s.Do(ctx, req)
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	return s.Expect(
		e.Status(200),
		e.FieldEquals("args", expected),
	)
}

func PostJSON(ctx context.Context, s *Session) error {
	return echoJSON(ctx, s, nethttp.MethodPost, "/post", NewUser)
}

func PutJSON(ctx context.Context, s *Session) error {
	return echoJSON(ctx, s, nethttp.MethodPut, "/put", UpdatePayload)
}

func echoJSON(ctx context.Context, s *Session, method, path string, body any) error {
	req, err := http.NewRequest(method, s.URL(path)).SetJSON(body)
	if err != nil {
		return err
	}

	resp, err := s.Do(ctx, req)
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	return s.Expect(
		e.Status(200),
		e.FieldEquals("json", body),
	)
}

func PostForm(ctx context.Context, s *Session) error {
	req := http.NewRequest(nethttp.MethodPost, s.URL("/post")).SetForm(LoginForm)

	resp, err := s.Do(ctx, req)
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	return s.Expect(
		e.Status(200),
		e.FieldEquals("form", LoginForm),
	)
}

func Delete(ctx context.Context, s *Session) error {
	resp, err := s.Do(ctx, http.NewRequest(nethttp.MethodDelete, s.URL("/delete")))
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	return s.Expect(
		e.Status(200),
		e.FieldExists("url"),
	)
}

func StatusCodesCheck(ctx context.Context, s *Session) error {
	for _, code := range StatusCodes {
		resp, err := s.Do(ctx, http.NewRequest(nethttp.MethodGet, s.URL(fmt.Sprintf("/status/%d", code))))
		if err != nil {
			return err
		}

		e := assertions.NewEvaluator(resp)
		if err := s.Expect(e.StatusIn(AllowedStatuses(code)...)); err != nil {
			return err
		}
	}
	return nil
}

// AllowedStatuses lists the responses accepted for a /status/{code} request.
// Error codes must come back exactly; success codes may come back as 200.
func AllowedStatuses(code int) []int {
	if code >= 200 && code < 300 && code != 200 {
		return []int{200, code}
	}
	return []int{code}
}

func Headers(ctx context.Context, s *Session) error {
	req := http.NewRequest(nethttp.MethodGet, s.URL("/headers")).SetHeaders(CustomHeaders)

	resp, err := s.Do(ctx, req)
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	return s.Expect(
		e.Status(200),
		e.KeyEquals("headers", "User-Agent", CustomHeaders["User-Agent"]),
		e.KeyEquals("headers", "Accept", CustomHeaders["Accept"]),
		e.KeyEqualsFold("headers", "X-Custom-Header", CustomHeaders["X-Custom-Header"]),
	)
}

func BasicAuth(ctx context.Context, s *Session) error {
	path := fmt.Sprintf("/basic-auth/%s/%s", AuthUser, AuthPassword)

	resp, err := s.Do(ctx, http.NewRequest(nethttp.MethodGet, s.URL(path)).SetBasicAuth(AuthUser, AuthPassword))
	if err != nil {
		return err
	}

	schema, err := schemaFS.ReadFile("schemas/basic-auth.json")
	if err != nil {
		return err
	}

	e := assertions.NewEvaluator(resp)
	if err := s.Expect(
		e.Status(200),
		e.Schema("basic-auth.json", schema),
		e.FieldEquals("authenticated", true),
	); err != nil {
		return err
	}

	resp, err = s.Do(ctx, http.NewRequest(nethttp.MethodGet, s.URL(path)).SetBasicAuth(AuthUser, AuthWrongPassword))
	if err != nil {
		return err
	}
	return s.Expect(assertions.NewEvaluator(resp).Status(401))
}

// DelayWithin returns a delay check whose request is bounded by timeout.
func DelayWithin(timeout time.Duration) Func {
	return func(ctx context.Context, s *Session) error {
		req := http.NewRequest(nethttp.MethodGet, s.URL(fmt.Sprintf("/delay/%d", DelaySeconds))).SetTimeout(timeout)

		resp, err := s.Do(ctx, req)
		if err != nil {
			return err
		}
		return s.Expect(assertions.NewEvaluator(resp).Status(200))
	}
}
