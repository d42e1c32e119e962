package genai

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

	"github.com/rs/zerolog"

	"mockup/internal/infra"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 120 * time.Second
)

// ErrMissingAPIKey is returned when the client is used without credentials.
var ErrMissingAPIKey = errors.New("genai: api key is required")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin transport over the Gemini generateContent endpoint. It
// does not interpret candidates; callers decide what a usable answer is.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// StatusError is returned when the service answers with a non-success status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gemini status %d", e.Code)
	}
	return fmt.Sprintf("gemini status %d: %s", e.Code, e.Message)
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with a generous timeout will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
		logger:     logger,
	}, nil
}

// GenerateContent posts req to the given model and decodes the raw response.
func (c *Client) GenerateContent(ctx context.Context, model string, req GenerateContentRequest) (*GenerateContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("genai: model is required")
	}

	var out GenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	start := time.Now()
	if err := c.invoke(ctx, path, req, &out); err != nil {
		c.logger.Debug().
			Err(err).
			Str("model", model).
			Dur("elapsed", time.Since(start)).
			Msg("genai: generateContent failed")
		return nil, err
	}

	c.logger.Debug().
		Str("model", model).
		Int("candidates", len(out.Candidates)).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generateContent succeeded")
	return &out, nil
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr errorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return &StatusError{Code: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
