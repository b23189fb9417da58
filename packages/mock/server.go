// Package mock provides a local httpbin-compatible echo server covering the
// endpoints echocheck's checks exercise.
package mock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/echocheck/packages/jsonvalue"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	// DefaultAddr is the listen address used when none is configured
	DefaultAddr = ":8080"
	// DefaultMaxDelay caps /delay/{n} the way httpbin does
	DefaultMaxDelay = 10
	// MaxMemory bounds multipart form parsing
	MaxMemory = 32 << 20
)

// Server is an httpbin-compatible echo server
type Server struct {
	addr      string
	maxDelay  int
	delayUnit time.Duration
	logger    *slog.Logger
	echo      *echo.Echo
}

// Option is a functional option for Server
type Option func(*Server)

// WithAddr sets the listen address
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithMaxDelay caps the number of delay units /delay/{n} may wait
func WithMaxDelay(n int) Option {
	return func(s *Server) {
		s.maxDelay = n
	}
}

// WithDelayUnit sets the duration of one /delay step. Tests shrink it.
func WithDelayUnit(d time.Duration) Option {
	return func(s *Server) {
		s.delayUnit = d
	}
}

// WithLogger logs every request at debug level
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new echo server
func NewServer(opts ...Option) *Server {
	s := &Server{
		addr:      DefaultAddr,
		maxDelay:  DefaultMaxDelay,
		delayUnit: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if s.logger != nil {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURI:     true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				s.logger.Debug("request",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency", v.Latency,
				)
				return nil
			},
		}))
	}

	e.GET("/get", s.handleGet)
	e.POST("/post", s.handleBody)
	e.PUT("/put", s.handleBody)
	e.PATCH("/patch", s.handleBody)
	e.DELETE("/delete", s.handleBody)
	e.GET("/headers", s.handleHeaders)
	e.Any("/status/:code", s.handleStatus)
	e.GET("/basic-auth/:user/:passwd", s.handleBasicAuth)
	e.GET("/delay/:n", s.handleDelay)

	s.echo = e
	return s
}

// Handler returns the server as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

// StartWithContext serves until ctx is canceled, then shuts down gracefully
func (s *Server) StartWithContext(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutdownCtx)
	}()

	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("echo server: %w", err)
	}
	return nil
}

func (s *Server) handleGet(c echo.Context) error {
	return c.JSON(http.StatusOK, s.describe(c, nil))
}

func (s *Server) handleHeaders(c echo.Context) error {
	return c.JSON(http.StatusOK, jsonvalue.NewObject().Set("headers", requestHeaders(c.Request())))
}

func (s *Server) handleBody(c echo.Context) error {
	payload, err := readPayload(c.Request())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s.describe(c, payload))
}

func (s *Server) handleStatus(c echo.Context) error {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 100 || code > 599 {
		return c.String(http.StatusBadRequest, "Invalid status code")
	}
	return c.NoContent(code)
}

func (s *Server) handleBasicAuth(c echo.Context) error {
	user, passwd, ok := c.Request().BasicAuth()
	if !ok || user != c.Param("user") || passwd != c.Param("passwd") {
		c.Response().Header().Set("WWW-Authenticate", `Basic realm="Fake Realm"`)
		return c.NoContent(http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, jsonvalue.NewObject().
		Set("authenticated", true).
		Set("user", user))
}

func (s *Server) handleDelay(c echo.Context) error {
	n, err := strconv.ParseFloat(c.Param("n"), 64)
	if err != nil || n < 0 {
		return c.String(http.StatusBadRequest, "Invalid delay")
	}
	if n > float64(s.maxDelay) {
		n = float64(s.maxDelay)
	}

	timer := time.NewTimer(time.Duration(n * float64(s.delayUnit)))
	defer timer.Stop()

	select {
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	case <-timer.C:
	}

	payload, err := readPayload(c.Request())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, s.describe(c, payload))
}

// payload is the decoded request body, echoed back in data/files/form/json
type payload struct {
	data  string
	files *jsonvalue.Object
	form  *jsonvalue.Object
	json  any
}

// describe builds the httpbin echo document. Keys follow httpbin's sorted order.
func (s *Server) describe(c echo.Context, p *payload) *jsonvalue.Object {
	req := c.Request()
	obj := jsonvalue.NewObject().Set("args", multiValues(req.URL.Query()))
	if p != nil {
		obj.Set("data", p.data).
			Set("files", p.files).
			Set("form", p.form)
	}
	obj.Set("headers", requestHeaders(req))
	if p != nil {
		obj.Set("json", p.json)
	}
	obj.Set("origin", c.RealIP()).
		Set("url", c.Scheme()+"://"+req.Host+req.URL.RequestURI())
	return obj
}

func readPayload(req *http.Request) (*payload, error) {
	p := &payload{
		files: jsonvalue.NewObject(),
		form:  jsonvalue.NewObject(),
	}
	if req.Body == nil {
		return p, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, fmt.Errorf("parsing form: %w", err)
		}
		p.form = multiValues(values)
	case "multipart/form-data":
		req.Body = io.NopCloser(bytes.NewReader(body))
		if err := req.ParseMultipartForm(MaxMemory); err != nil {
			return nil, fmt.Errorf("parsing multipart form: %w", err)
		}
		p.form = multiValues(req.MultipartForm.Value)
		files := make(map[string][]string, len(req.MultipartForm.File))
		for name, headers := range req.MultipartForm.File {
			for _, fh := range headers {
				content, err := readFile(fh)
				if err != nil {
					return nil, fmt.Errorf("reading file %s: %w", name, err)
				}
				files[name] = append(files[name], content)
			}
		}
		p.files = multiValues(files)
	default:
		p.data = string(body)
		if v, err := jsonvalue.Parse(body); err == nil {
			p.json = v
		}
	}
	return p, nil
}

func readFile(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// multiValues echoes single values as strings and repeated values as lists.
func multiValues(values map[string][]string) *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	for _, k := range sortedKeys(values) {
		vs := values[k]
		if len(vs) == 1 {
			obj.Set(k, vs[0])
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		obj.Set(k, list)
	}
	return obj
}

func requestHeaders(req *http.Request) *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	all := req.Header.Clone()
	if all == nil {
		all = http.Header{}
	}
	all.Set("Host", req.Host)
	for _, k := range sortedKeys(all) {
		obj.Set(k, strings.Join(all[k], ","))
	}
	return obj
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
