// Package apiclient is the HTTP transport to the blog backend.
//
// Every request passes through an ordered list of request steps (headers,
// request id, bearer token) and every response through an ordered list of
// response steps (envelope unwrapping, error normalization). Callers only
// ever see the envelope's data or an *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"blog-client/internal/tokenstore"
)

// Runtime selects where the bearer token comes from.
type Runtime int

const (
	// RuntimeClient reads the token from the local token store.
	RuntimeClient Runtime = iota
	// RuntimeServer reads the token from the incoming request bound with WithRequest.
	RuntimeServer
)

var (
	// ErrBaseURL is returned by New when no base url is configured.
	ErrBaseURL = errors.New("api base url is required")
	// ErrNoRequestContext is returned before sending when the server runtime
	// has no request bound to the context.
	ErrNoRequestContext = errors.New("api request context is not set, bind the incoming request with WithRequest")
)

// RequestStep transforms an outgoing request.
type RequestStep func(ctx context.Context, req *http.Request) error

// ResponseStep transforms a received result.
type ResponseStep func(res *Result)

// Result is what response steps operate on.
type Result struct {
	StatusCode int
	Body       []byte
	Data       json.RawMessage
	Err        error
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Runtime    Runtime
	Tokens     tokenstore.Store
	HTTPClient *http.Client
	Log        logrus.FieldLogger
}

// Client talks to the backend REST API.
type Client struct {
	baseURL  string
	http     *http.Client
	log      logrus.FieldLogger
	request  []RequestStep
	response []ResponseStep
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, ErrBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if opts.Runtime == RuntimeClient && opts.Tokens == nil {
		return nil, errors.New("client runtime requires a token store")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	c := &Client{
		baseURL: base,
		http:    httpClient,
		log:     log,
	}

	var auth RequestStep
	if opts.Runtime == RuntimeServer {
		auth = requestCookieBearer()
	} else {
		auth = storeBearer(opts.Tokens)
	}
	c.request = []RequestStep{jsonHeaders, requestID, auth}
	c.response = []ResponseStep{unwrapEnvelope, normalizeError}
	return c, nil
}

// Use appends request steps after the built-in ones.
func (c *Client) Use(steps ...RequestStep) {
	c.request = append(c.request, steps...)
}

type payload struct {
	contentType string
	body        io.Reader
}

func jsonPayload(v any) (*payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return &payload{contentType: "application/json", body: bytes.NewReader(raw)}, nil
}

// Do sends a request and decodes the unwrapped envelope data into out.
// out may be nil when the data is not needed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var p *payload
	switch b := body.(type) {
	case nil:
	case *payload:
		p = b
	default:
		var err error
		if p, err = jsonPayload(b); err != nil {
			return err
		}
	}
	return c.send(ctx, method, path, query, p, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, p *payload, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if p != nil {
		reader = p.body
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if p != nil {
		req.Header.Set("Content-Type", p.contentType)
	}

	for _, step := range c.request {
		if err := step(ctx, req); err != nil {
			return err
		}
	}

	res := c.roundTrip(req)
	for _, step := range c.response {
		step(res)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   req.URL.Path,
		"status": res.StatusCode,
	})
	if res.Err != nil {
		entry.WithError(res.Err).Debug("api request failed")
		return res.Err
	}
	entry.Debug("api request")

	if out == nil || len(res.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Data, out); err != nil {
		return &Error{StatusCode: res.StatusCode, Message: "unexpected response data", Err: err}
	}
	return nil
}

func (c *Client) roundTrip(req *http.Request) *Result {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Result{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	res := &Result{StatusCode: resp.StatusCode, Body: body}
	if err != nil {
		res.Err = fmt.Errorf("read response body: %w", err)
		return res
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		res.Err = fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}
	return res
}
