package mock

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(opts...).Handler())
	t.Cleanup(server.Close)
	return server
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_Get(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/get?page=1&tag=a&tag=b")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	body := decode(t, resp)
	assert.Equal(t, server.URL+"/get?page=1&tag=a&tag=b", body["url"])
	assert.Equal(t, map[string]any{"page": "1", "tag": []any{"a", "b"}}, body["args"])
	assert.Contains(t, body, "headers")
	assert.Contains(t, body, "origin")
	assert.NotContains(t, body, "json")
}

func TestServer_Get_KeyOrder(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/get")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	s := string(raw)
	assert.Less(t, strings.Index(s, `"args"`), strings.Index(s, `"headers"`))
	assert.Less(t, strings.Index(s, `"headers"`), strings.Index(s, `"origin"`))
	assert.Less(t, strings.Index(s, `"origin"`), strings.Index(s, `"url"`))
}

func TestServer_PostJSON(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/post", "application/json", strings.NewReader(`{"name":"Алексей","skills":["Go"],"n":1}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, map[string]any{"name": "Алексей", "skills": []any{"Go"}, "n": float64(1)}, body["json"])
	assert.Equal(t, `{"name":"Алексей","skills":["Go"],"n":1}`, body["data"])
	assert.Equal(t, map[string]any{}, body["form"])
}

func TestServer_PostForm(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.PostForm(server.URL+"/post", url.Values{
		"username":    {"test_user"},
		"remember_me": {"true"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, map[string]any{"username": "test_user", "remember_me": "true"}, body["form"])
	assert.Equal(t, "", body["data"])
	assert.Nil(t, body["json"])
}

func TestServer_PostMultipartEchoesFileContents(t *testing.T) {
	server := newTestServer(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("username", "test_user"))
	part, err := w.CreateFormFile("report", "report.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("line one\nline two"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(server.URL+"/post", w.FormDataContentType(), &body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.Equal(t, map[string]any{"report": "line one\nline two"}, out["files"])
	assert.Equal(t, map[string]any{"username": "test_user"}, out["form"])
}

// lockedBuffer is written by the server goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServer_LogsRequestsAtDebug(t *testing.T) {
	logs := &lockedBuffer{}
	handler := slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelInfo})
	server := newTestServer(t, WithLogger(slog.New(handler)))

	resp, err := http.Get(server.URL + "/get")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, logs.String())

	handler = slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})
	server = newTestServer(t, WithLogger(slog.New(handler)))

	resp, err = http.Get(server.URL + "/get")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, logs.String(), "msg=request")
	assert.Contains(t, logs.String(), "uri=/get")
}

func TestServer_PutAndDelete(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/put", strings.NewReader(`{"status":"updated"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "updated"}, decode(t, resp)["json"])

	req, err = http.NewRequest(http.MethodDelete, server.URL+"/delete", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, server.URL+"/delete", decode(t, resp)["url"])
}

func TestServer_Headers(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/headers", nil)
	require.NoError(t, err)
	req.Header.Set("x-custom-header", "test-value-123")
	req.Header.Set("User-Agent", "Python-API-Tester/1.0")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	headers := decode(t, resp)["headers"].(map[string]any)
	assert.Equal(t, "test-value-123", headers["X-Custom-Header"])
	assert.Equal(t, "Python-API-Tester/1.0", headers["User-Agent"])
	assert.Contains(t, headers, "Host")
}

func TestServer_Status(t *testing.T) {
	server := newTestServer(t)

	for _, code := range []int{200, 201, 403, 404, 500} {
		resp, err := http.Get(server.URL + "/status/" + strconv.Itoa(code))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, code, resp.StatusCode)
	}

	resp, err := http.Get(server.URL + "/status/abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_BasicAuth(t *testing.T) {
	server := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/basic-auth/testuser/testpass", nil)
	require.NoError(t, err)
	req.SetBasicAuth("testuser", "testpass")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"authenticated": true, "user": "testuser"}, decode(t, resp))

	req.SetBasicAuth("testuser", "wrong_password")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
}

func TestServer_Delay(t *testing.T) {
	server := newTestServer(t, WithDelayUnit(20*time.Millisecond), WithMaxDelay(3))

	start := time.Now()
	resp, err := http.Get(server.URL + "/delay/2")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	// Capped at three units.
	start = time.Now()
	resp, err = http.Get(server.URL + "/delay/100")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Less(t, time.Since(start), time.Second)
}
