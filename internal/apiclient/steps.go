package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"blog-client/internal/tokenstore"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// RequestIDHeader is forwarded to the backend for log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Envelope is the wrapper every backend response shares.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func jsonHeaders(_ context.Context, req *http.Request) error {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return nil
}

func requestID(ctx context.Context, req *http.Request) error {
	id := RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, id)
	return nil
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func storeBearer(tokens tokenstore.Store) RequestStep {
	return func(ctx context.Context, req *http.Request) error {
		token, err := tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		setBearer(req, token)
		return nil
	}
}

func requestCookieBearer() RequestStep {
	return func(ctx context.Context, req *http.Request) error {
		incoming := RequestFrom(ctx)
		if incoming == nil {
			return ErrNoRequestContext
		}
		if ck, err := incoming.Cookie(tokenstore.CookieName); err == nil {
			setBearer(req, ck.Value)
		}
		return nil
	}
}

// unwrapEnvelope replaces the body with the envelope data on success and
// turns an error envelope into an *Error.
func unwrapEnvelope(res *Result) {
	if res.Err != nil {
		return
	}
	var env Envelope
	if err := json.Unmarshal(res.Body, &env); err != nil {
		res.Err = &Error{StatusCode: res.StatusCode, Message: "invalid response envelope", Err: err}
		return
	}
	if env.Status == StatusSuccess {
		if string(env.Data) == "null" {
			env.Data = nil
		}
		res.Data = env.Data
		return
	}
	msg := env.Message
	if msg == "" {
		msg = "request failed"
	}
	res.Err = &Error{StatusCode: res.StatusCode, Message: msg}
}

// normalizeError makes every failure an *Error, preferring the server's
// envelope message over the transport error text.
func normalizeError(res *Result) {
	if res.Err == nil {
		return
	}
	if _, ok := res.Err.(*Error); ok {
		return
	}
	msg := res.Err.Error()
	var env Envelope
	if len(res.Body) > 0 && json.Unmarshal(res.Body, &env) == nil && env.Message != "" {
		msg = env.Message
	}
	res.Err = &Error{StatusCode: res.StatusCode, Message: msg, Err: res.Err}
}
