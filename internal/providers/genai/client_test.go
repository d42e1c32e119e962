package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{APIKey: "  "}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("NewClient error = %v, want %v", err, ErrMissingAPIKey)
	}
}

func TestGenerateContentSendsPayload(t *testing.T) {
	var captured GenerateContentRequest
	var path, key string
	client, err := NewClient(Options{
		APIKey:  "secret",
		BaseURL: "https://example.test/v1beta/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			path = r.URL.Path
			key = r.Header.Get("x-goog-api-key")
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"hi "},{"text":"there"}]}}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	req := GenerateContentRequest{Contents: []Content{UserContent(InlinePart([]byte("png"), "image/png"), TextPart("scene"))}}
	resp, err := client.GenerateContent(context.Background(), "gemini-2.5-flash", req)
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}
	if path != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("path = %q", path)
	}
	if key != "secret" {
		t.Fatalf("api key header = %q, want %q", key, "secret")
	}
	if len(captured.Contents) != 1 || len(captured.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected contents: %#v", captured.Contents)
	}
	data, err := captured.Contents[0].Parts[0].InlineData.Decode()
	if err != nil || string(data) != "png" {
		t.Fatalf("inline data = %q (%v), want %q", data, err, "png")
	}
	if got := resp.Text(); got != "hi there" {
		t.Fatalf("Text() = %q, want %q", got, "hi there")
	}
}

func TestGenerateContentMapsStatusErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "structured", body: `{"error":{"code":429,"message":"quota exhausted"}}`, want: "gemini status 429: quota exhausted"},
		{name: "plain", body: "upstream down", want: "gemini status 429: upstream down"},
		{name: "empty", body: "", want: "gemini status 429"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(Options{
				APIKey: "k",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					return jsonResponse(http.StatusTooManyRequests, tc.body), nil
				})},
			})
			if err != nil {
				t.Fatalf("NewClient returned error: %v", err)
			}
			_, err = client.GenerateContent(context.Background(), "m", GenerateContentRequest{})
			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if err.Error() != tc.want {
				t.Fatalf("error = %q, want %q", err.Error(), tc.want)
			}
		})
	}
}

func TestGenerateContentHonoursCanceledContext(t *testing.T) {
	calls := 0
	client, _ := NewClient(Options{
		APIKey: "k",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return jsonResponse(http.StatusOK, `{}`), nil
		})},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.GenerateContent(ctx, "m", GenerateContentRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("transport calls = %d, want 0", calls)
	}
}

func TestBlockReasonAndEmptyText(t *testing.T) {
	var resp *GenerateContentResponse
	if resp.BlockReason() != "" || resp.Text() != "" {
		t.Fatal("nil response should have no block reason or text")
	}
	resp = &GenerateContentResponse{PromptFeedback: &PromptFeedback{BlockReason: " SAFETY "}}
	if got := resp.BlockReason(); got != "SAFETY" {
		t.Fatalf("BlockReason() = %q, want %q", got, "SAFETY")
	}
}
