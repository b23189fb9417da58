package http

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	Body        []byte
	Timeout     time.Duration
	QueryParams url.Values
	BasicAuth   *BasicAuthCredentials
}

// BasicAuthCredentials holds credentials for HTTP basic auth
type BasicAuthCredentials struct {
	Username string
	Password string
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(url.Values),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetHeaders(headers map[string]string) *Request {
	for k, v := range headers {
		r.Headers[k] = v
	}
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// SetQueryParam adds a query parameter. Non-string values are stringified
// with fmt, so 1 is sent as "1".
func (r *Request) SetQueryParam(key string, value any) *Request {
	r.QueryParams.Add(key, stringify(value))
	return r
}

func (r *Request) SetBasicAuth(username, password string) *Request {
	r.BasicAuth = &BasicAuthCredentials{Username: username, Password: password}
	return r
}

// SetJSON encodes v as the request body and sets the JSON content type.
func (r *Request) SetJSON(v any) (*Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return r, fmt.Errorf("encoding JSON body: %w", err)
	}
	r.Body = data
	if r.Headers["Content-Type"] == "" {
		r.SetHeader("Content-Type", "application/json")
	}
	return r, nil
}

// SetForm encodes fields as an application/x-www-form-urlencoded body.
func (r *Request) SetForm(fields map[string]string) *Request {
	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, v)
	}
	r.Body = []byte(values.Encode())
	if r.Headers["Content-Type"] == "" {
		r.SetHeader("Content-Type", "application/x-www-form-urlencoded")
	}
	return r
}

func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, vs := range r.QueryParams {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
