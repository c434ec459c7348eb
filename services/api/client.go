package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trezcool/eduportal/core"
	"github.com/trezcool/eduportal/core/school"
	"github.com/trezcool/eduportal/core/session"
)

const (
	networkFailure = "network failure"
	maxLoggedBody  = 200
)

// Request headers carrying the session.
const (
	HeaderRole   = "role"
	HeaderUserID = "user_id"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client    // optional
	Logger     core.Logger     // optional
	Validator  *core.Validator // optional
}

// Client is the single chokepoint for calls to the school backend.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   core.Logger
	validate *core.Validator
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = core.NopLogger
	}
	validate := opts.Validator
	if validate == nil {
		validate = school.NewValidator()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		http:     httpClient,
		logger:   logger,
		validate: validate,
	}
}

func NewClientFromConfig(conf *core.Config, logger core.Logger, validate *core.Validator) *Client {
	return NewClient(Options{
		BaseURL:   conf.API.BaseURL,
		Timeout:   conf.API.Timeout,
		Logger:    logger,
		Validator: validate,
	})
}

// Validator returns the validator forms are checked with before they are sent.
func (c *Client) Validator() *core.Validator {
	return c.validate
}

// Call sends one request on behalf of sess and normalizes the response. It never panics and never retries.
func (c *Client) Call(ctx context.Context, sess session.Session, method, path string, body interface{}) Result {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return Failure(0, "unsupported method "+method)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Failure(0, "encoding request: "+err.Error())
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return Failure(0, "building request: "+err.Error())
	}
	req.Header.Set(HeaderRole, sess.Role.String())
	req.Header.Set(HeaderUserID, sess.UserID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("api: %s %s: %v", method, path, err))
		return Failure(0, networkFailure)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("api: %s %s: reading body: %v", method, path, err))
		return Failure(0, networkFailure)
	}
	c.logger.Debug(fmt.Sprintf("api: %s %s -> %d (%d bytes)", method, path, resp.StatusCode, len(text)))

	res, isText := decodeResponse(resp.StatusCode, text)
	if isText {
		c.logger.Warn(fmt.Sprintf("api: %s %s: server returned non-JSON response: %s", method, path, truncate(string(text))))
	}
	return res
}

// decodeResponse normalizes a response. isText reports a 2xx body that was not JSON.
func decodeResponse(status int, body []byte) (res Result, isText bool) {
	text := strings.TrimSpace(string(body))

	if status < 200 || status > 299 {
		var payload interface{}
		if err := json.Unmarshal(body, &payload); err == nil {
			if msg := messageOf(payload); msg != "" {
				return Failure(status, msg), false
			}
			return Failure(status, fmt.Sprintf("HTTP %d", status)), false
		}
		if text == "" {
			return Failure(status, fmt.Sprintf("HTTP %d", status)), false
		}
		return Failure(status, fmt.Sprintf("HTTP %d: %s", status, text)), false
	}

	if text == "" {
		return Success(map[string]interface{}{"status": "success"}, nil), false
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Success(map[string]interface{}{"status": "success", "message": text}, nil), true
	}
	if obj, ok := payload.(map[string]interface{}); ok {
		if msg, ok := obj["error"].(string); ok && msg != "" {
			return Failure(status, msg), false
		}
	}
	return Success(payload, body), false
}

// messageOf returns the `error` or `message` field of an error payload.
func messageOf(payload interface{}) string {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"error", "message"} {
		if msg, ok := obj[key].(string); ok && msg != "" {
			return msg
		}
	}
	return ""
}

func truncate(s string) string {
	if r := []rune(s); len(r) > maxLoggedBody {
		return string(r[:maxLoggedBody]) + "..."
	}
	return s
}
