package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"evaluation-console/internal/domain"
	"github.com/pkg/errors"
)

// Client talks JSON to the platform REST API under a role prefix
// (/formateur or /admin-systeme).
type Client struct {
	baseURL string
	prefix  string
	token   string
	http    *http.Client
}

func NewClient(baseURL, role, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  "/" + strings.Trim(role, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the underlying transport (tests, custom TLS).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type errorBody struct {
	Message string                     `json:"message"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	header      http.Header
}

func (c *Client) endpoint(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return c.prefix + "/" + strings.Join(escaped, "/")
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	req := request{method: method, path: path}
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		req.body = bytes.NewReader(raw)
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	for k, vs := range r.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		httpReq.Header.Set("Content-Type", r.contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errors.Wrapf(err, "%s %s", r.method, r.path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrapf(err, "decode %s", r.path)
		}
		return nil
	}
	return decodeError(resp.StatusCode, raw)
}

// decodeError maps a non-2xx body onto the domain error taxonomy. 422 field
// keys are kept verbatim; a field may carry a string or a list of strings.
func decodeError(status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	switch status {
	case http.StatusNotFound:
		msg := body.Message
		if msg == "" {
			msg = "resource"
		}
		return errors.Wrap(domain.ErrNotFound, msg)
	case http.StatusUnprocessableEntity:
		fields := make(map[string]string, len(body.Errors))
		for field, rawMsg := range body.Errors {
			fields[field] = firstMessage(rawMsg)
		}
		return &domain.ValidationError{Message: body.Message, Fields: fields}
	}
	return &domain.APIError{Status: status, Message: body.Message}
}

func firstMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return strings.Trim(string(raw), `"`)
}
