package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const okResponse = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 0,
  "status": "completed",
  "model": "gpt-4o",
  "output": [{
    "type": "message",
    "id": "msg_1",
    "status": "completed",
    "role": "assistant",
    "content": [{"type": "output_text", "text": %s, "annotations": []}]
  }]
}`

func respond(w http.ResponseWriter, text string) {
	quoted, _ := json.Marshal(text)
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, strings.Replace(okResponse, "%s", string(quoted), 1))
}

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/",
		Model:   "gpt-4o",
		Timeout: 5 * time.Second,
	})
	c.backoff = []time.Duration{0, 0, 0}
	return c
}

func TestComplete_ReturnsOutputText(t *testing.T) {
	var gotBody map[string]any
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/responses") {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		respond(w, "You wrote about rain.")
	})

	out, err := c.Complete(context.Background(), Request{
		Instructions: "be kind",
		Messages:     []Message{{Role: RoleUser, Text: "it rained"}},
		MaxTokens:    300,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "You wrote about rain." {
		t.Errorf("output = %q", out)
	}
	if gotBody["instructions"] != "be kind" {
		t.Errorf("instructions = %v", gotBody["instructions"])
	}
	if gotBody["model"] != "gpt-4o" {
		t.Errorf("model = %v", gotBody["model"])
	}
}

func TestCompleteJSON_Decodes(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(w, `{"name":"Career crossroads"}`)
	})
	var out struct {
		Name string `json:"name"`
	}
	err := c.CompleteJSON(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}},
		Schema{Name: "Test", Definition: map[string]any{"type": "object"}}, &out)
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if out.Name != "Career crossroads" {
		t.Errorf("name = %q", out.Name)
	}
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
			return
		}
		respond(w, "ok")
	})
	out, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Text: "x"}}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "ok" || calls.Load() != 2 {
		t.Errorf("out = %q after %d calls", out, calls.Load())
	}
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	})
	if _, err := c.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestComplete_TimesOut(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c.cfg.Timeout = 50 * time.Millisecond
	_, err := c.Complete(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestUnavailableWithoutKey(t *testing.T) {
	c := New(Config{Model: "gpt-4o"})
	if c.Available() {
		t.Error("client without key should be unavailable")
	}
	if _, err := c.Complete(context.Background(), Request{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
	var out map[string]any
	if err := c.CompleteJSON(context.Background(), Request{}, Schema{}, &out); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}
