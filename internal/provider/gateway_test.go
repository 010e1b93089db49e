package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func completionJSON(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func newTestGateway(srv *httptest.Server, key string, timeout time.Duration) *Gateway {
	return New(Config{
		APIKey:     key,
		BaseURL:    srv.URL,
		Model:      "test-model",
		Timeout:    timeout,
		SiteURL:    "https://example.test",
		SiteName:   "Test Site",
		HTTPClient: srv.Client(),
	})
}

func TestInvoke_NoCredentialSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	g := newTestGateway(srv, "  ", time.Second)
	if g.Enabled() {
		t.Fatalf("gateway should be disabled without a key")
	}
	rep := g.Invoke(context.Background(), "anything")
	if !rep.Fallback || rep.Text != FallbackText || rep.Reason != ReasonNoCredential {
		t.Fatalf("unexpected reply: %+v", rep)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("expected no provider calls, got %d", n)
	}
}

func TestInvoke_SuccessSendsMessagesAndSanitizes(t *testing.T) {
	var (
		gotPath, gotAuth, gotReferer, gotTitle string
		gotBody                                struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotTitle = r.Header.Get("X-Title")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionJSON("## Issues\r\n\r\n\r\n**Missing** `return`\n"))
	}))
	defer srv.Close()

	rep := newTestGateway(srv, "sk-test", 2*time.Second).Invoke(context.Background(), "INSTRUCTION")
	if rep.Fallback {
		t.Fatalf("unexpected fallback: %+v", rep)
	}
	if rep.Text != "Issues\nMissing return" {
		t.Fatalf("text = %q", rep.Text)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotReferer != "https://example.test" || gotTitle != "Test Site" {
		t.Fatalf("attribution headers = %q / %q", gotReferer, gotTitle)
	}
	if gotBody.Model != "test-model" || len(gotBody.Messages) != 2 {
		t.Fatalf("body = %+v", gotBody)
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != SystemPrompt {
		t.Fatalf("system message = %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "INSTRUCTION" {
		t.Fatalf("user message = %+v", gotBody.Messages[1])
	}
}

func TestInvoke_ServerErrorFallsBackWithoutRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom"}}`)
	}))
	defer srv.Close()

	rep := newTestGateway(srv, "sk-test", 2*time.Second).Invoke(context.Background(), "x")
	if !rep.Fallback || rep.Text != FallbackText || rep.Reason != ReasonTransport {
		t.Fatalf("unexpected reply: %+v", rep)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestInvoke_TimeoutFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	rep := newTestGateway(srv, "sk-test", 50*time.Millisecond).Invoke(context.Background(), "x")
	if !rep.Fallback || rep.Text != FallbackText {
		t.Fatalf("unexpected reply: %+v", rep)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestInvoke_EmptyCompletionFallsBack(t *testing.T) {
	cases := map[string]string{
		"no choices":  `{"id":"c","object":"chat.completion","created":1,"model":"m","choices":[]}`,
		"blank":       completionJSON(""),
		"only markup": completionJSON("**\n\n``` ```\n#"),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			rep := newTestGateway(srv, "sk-test", time.Second).Invoke(context.Background(), "x")
			if !rep.Fallback || rep.Text != FallbackText || rep.Reason != ReasonEmpty {
				t.Fatalf("unexpected reply: %+v", rep)
			}
		})
	}
}
