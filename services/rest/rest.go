// Package rest implements the JSON/HTTP plumbing shared by the backend API
// clients: request building, bearer auth, response decoding and the mapping
// of non-2xx responses to APIError values.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/edupredict/predictcli/core"
)

// APIError is a non-2xx response from the backend, carrying the message (and
// field errors, if any) extracted from its body.
type APIError struct {
	Status  int
	Message string
	Fields  []core.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// UserMessage returns the server-provided message, fit for display.
func (e *APIError) UserMessage() string { return e.Message }

func (e *APIError) StatusCode() int { return e.Status }

// ErrorExtractor turns a non-2xx status and body into an error.
type ErrorExtractor func(status int, body []byte) error

// Client is the shared HTTP client configuration of one API base URL.
type Client struct {
	Base string
	HTTP *http.Client
	Log  core.Logger
}

func NewClient(baseURL string, log core.Logger) Client {
	return Client{
		Base: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{Timeout: core.Conf.GetDuration("requestTimeout")},
		Log:  log,
	}
}

func (c Client) Get(ctx context.Context, path, token string, out interface{}, extract ErrorExtractor) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out, extract)
}

func (c Client) Post(ctx context.Context, path, token string, body, out interface{}, extract ErrorExtractor) error {
	return c.do(ctx, http.MethodPost, path, token, body, out, extract)
}

func (c Client) Delete(ctx context.Context, path, token string, extract ErrorExtractor) error {
	return c.do(ctx, http.MethodDelete, path, token, nil, nil, extract)
}

func (c Client) do(ctx context.Context, method, path, token string, body, out interface{}, extract ErrorExtractor) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return errors.Wrap(err, "encoding request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, &buf)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.Log.Debug("calling " + method + " " + path)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling "+path)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "reading response body")
	}
	if res.StatusCode >= http.StatusMultipleChoices {
		return extract(res.StatusCode, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, "decoding response")
		}
	}
	return nil
}

// DetailOrError extracts endpoints' usual failure shape, {"detail": ...} or
// {"error": ...}, falling back to the given generic message.
func DetailOrError(fallback string) ErrorExtractor {
	return func(status int, body []byte) error {
		var payload struct {
			Detail  string `json:"detail"`
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.Unmarshal(body, &payload)

		msg := payload.Detail
		if msg == "" {
			msg = payload.Error
		}
		if msg == "" {
			msg = payload.Details
		}
		if msg == "" {
			msg = fallback
		}
		return &APIError{Status: status, Message: msg}
	}
}

// FieldKeyed extracts DRF-style validation failures where messages come as
// {"Username": ["..."], ...}. The first field message wins; an "error" key is
// the last resort before the fallback.
func FieldKeyed(fallback string, fields ...string) ErrorExtractor {
	return func(status int, body []byte) error {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			return &APIError{Status: status, Message: fallback}
		}

		apiErr := &APIError{Status: status, Message: fallback}
		for _, field := range fields {
			raw, ok := payload[field]
			if !ok {
				continue
			}
			var msgs []string
			if err := json.Unmarshal(raw, &msgs); err != nil || len(msgs) == 0 {
				continue
			}
			if apiErr.Message == fallback {
				apiErr.Message = msgs[0]
			}
			apiErr.Fields = append(apiErr.Fields, core.FieldError{Field: field, Error: msgs[0]})
		}
		if apiErr.Message == fallback {
			var errMsg struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(body, &errMsg); err == nil && errMsg.Error != "" {
				apiErr.Message = errMsg.Error
			}
		}
		return apiErr
	}
}
