// Package remote implements the suggestion sources backed by an HTTP API.
package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bascanada/smartsearch/pkg/log"
)

type Auth interface {
	Login(req *http.Request) error
}

type CookieAuth struct {
	Cookie string
}

func (c CookieAuth) Login(req *http.Request) error {
	req.Header.Set("Cookie", c.Cookie)
	return nil
}

// HeaderAuth sets fixed headers (like Authorization) on each request.
type HeaderAuth struct {
	Headers map[string]string
}

func (h HeaderAuth) Login(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// StatusError is returned for responses with a 4xx or 5xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.StatusCode, e.Body)
}

type HttpClient struct {
	client http.Client
	url    string
	auth   Auth
}

// ClientOptions configures GetClient
type ClientOptions struct {
	Auth Auth
	// Insecure skips TLS certificate verification
	Insecure bool
}

// GetClient returns a client for the API rooted at url. A missing scheme
// defaults to https.
func GetClient(url string, opts ClientOptions) HttpClient {
	if url != "" {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "https://" + url
		}
		url = strings.TrimRight(url, "/")
	}

	return HttpClient{
		client: newHTTPClient(opts.Insecure),
		url:    url,
		auth:   opts.Auth,
	}
}

func newHTTPClient(insecure bool) http.Client {
	v, ok := http.DefaultTransport.(*http.Transport)
	if !ok || !insecure {
		return http.Client{}
	}
	transport := v.Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	return http.Client{Transport: transport}
}

// Get sends a GET request and decodes the JSON response into responseData.
func (c HttpClient) Get(ctx context.Context, path string, queryParams map[string]string, responseData interface{}) error {
	path = c.url + path

	q := url.Values{}
	for k, v := range queryParams {
		q.Add(k, v)
	}
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, responseData)
}

// PostJson sends body as JSON. responseData may be nil when the response
// is not needed.
func (c HttpClient) PostJson(ctx context.Context, path string, body interface{}, responseData interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, responseData)
}

func (c HttpClient) do(req *http.Request, responseData interface{}) error {
	if c.auth != nil {
		if err := c.auth.Login(req); err != nil {
			return fmt.Errorf("authenticating request: %w", err)
		}
	}

	if log.Enabled(log.LevelTrace) {
		log.Trace("[%s] %s headers: %s", req.Method, req.URL, maskHeaderMap(req.Header))
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode >= 400 {
		log.Debug("[%s] %s returned %d", req.Method, req.URL, res.StatusCode)
		return &StatusError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(resBody))}
	}

	if responseData == nil || len(bytes.TrimSpace(resBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resBody, responseData); err != nil {
		return fmt.Errorf("decoding response of %s: %w", req.URL.Path, err)
	}
	return nil
}

// maskHeaderMap returns a string representation of headers with sensitive
// values redacted (keeps first 4 chars for debugging).
func maskHeaderMap(h http.Header) string {
	redacted := []string{}
	for k, vals := range h {
		v := ""
		if len(vals) > 0 {
			val := vals[0]
			switch strings.ToLower(k) {
			case "authorization", "cookie", "x-auth-token":
				if len(val) > 4 {
					v = val[:4] + "...REDACTED"
				} else {
					v = "REDACTED"
				}
			default:
				v = val
			}
		}
		redacted = append(redacted, fmt.Sprintf("%s: %s", k, v))
	}
	return strings.Join(redacted, "; ")
}
