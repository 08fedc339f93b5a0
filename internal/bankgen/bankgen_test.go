package bankgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pavelanni/spacequiz/internal/bank"
	"github.com/pavelanni/spacequiz/internal/model"
)

const draftBank = `{
  "name": "Planets",
  "description": "The solar system",
  "questions": {
    "multipleChoice": [
      {"question": "Largest planet?", "options": ["Mars", "Jupiter", "Venus", "Earth"], "correctAnswer": "B"},
      {"type": "multiSelect", "question": "Gas giants?", "options": ["Jupiter", "Mars", "Saturn", "Venus"], "correctAnswers": ["A", "C"]}
    ],
    "trueFalse": [
      {"question": "Pluto is a planet", "correctAnswer": "FALSE"}
    ]
  }
}`

// fakeChat serves a single canned chat completion and records the request.
func fakeChat(t *testing.T, content string) (*httptest.Server, *[]string) {
	t.Helper()
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/models"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			var req struct {
				Messages []struct {
					Content string `json:"content"`
				} `json:"messages"`
				ResponseFormat struct {
					Type string `json:"type"`
				} `json:"response_format"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.ResponseFormat.Type != "json_object" {
				t.Errorf("expected JSON response format, got %q", req.ResponseFormat.Type)
			}
			if len(req.Messages) > 0 {
				prompts = append(prompts, req.Messages[0].Content)
			}
			resp := map[string]any{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": content},
				}},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &prompts
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL+"/v1", "test", "test-model", "standard")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsUnknownStyle(t *testing.T) {
	if _, err := New("", "key", "model", "brutal"); err == nil {
		t.Fatal("expected error for unknown style")
	}
}

func TestPing(t *testing.T) {
	srv, _ := fakeChat(t, "{}")
	if err := newTestClient(t, srv).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestGenerate(t *testing.T) {
	srv, prompts := fakeChat(t, draftBank)
	c := newTestClient(t, srv)

	res, err := c.Generate(context.Background(), Request{
		ID:          "planets",
		Topic:       "the solar system",
		Choice:      2,
		TrueFalse:   1,
		MultiSelect: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Bank.ID != "planets" || res.Bank.Name != "Planets" {
		t.Errorf("unexpected bank %q/%q", res.Bank.ID, res.Bank.Name)
	}
	if len(res.Bank.Choice) != 2 || len(res.Bank.TrueFalse) != 1 {
		t.Fatalf("expected 2+1 questions, got %d+%d", len(res.Bank.Choice), len(res.Bank.TrueFalse))
	}
	if res.Bank.Choice[1].Kind() != model.KindMultiSelect {
		t.Errorf("expected second item to be multi-select, got %s", res.Bank.Choice[1].Kind())
	}
	if res.Raw != draftBank {
		t.Error("expected raw response to be kept")
	}

	if len(*prompts) != 1 {
		t.Fatalf("expected one chat request, got %d", len(*prompts))
	}
	prompt := (*prompts)[0]
	for _, want := range []string{"the solar system", "exactly 2 multiple choice", "exactly 1 true/false", "multiSelect items with two or three"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateInvalidDraft(t *testing.T) {
	srv, _ := fakeChat(t, `{"questions": {"multipleChoice": [{"question": "Short?", "options": ["a", "b"], "correctAnswer": "E"}]}}`)
	c := newTestClient(t, srv)

	res, err := c.Generate(context.Background(), Request{ID: "bad", Topic: "Oops", Choice: 1})
	var verr *bank.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Issues) != 2 {
		t.Errorf("expected 2 issues, got %+v", verr.Issues)
	}
	if res == nil || res.File.Name != "Oops" {
		t.Error("expected draft returned with topic as fallback name")
	}
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	srv, prompts := fakeChat(t, draftBank)
	c := newTestClient(t, srv)

	tests := []struct {
		name string
		req  Request
	}{
		{"no questions", Request{ID: "x", Topic: "t"}},
		{"negative", Request{ID: "x", Topic: "t", Choice: -1, TrueFalse: 3}},
		{"missing id", Request{Topic: "t", Choice: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Generate(context.Background(), tt.req); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(*prompts) != 0 {
		t.Errorf("expected no API calls, got %d", len(*prompts))
	}
}

func TestGenerateUnparseableResponse(t *testing.T) {
	srv, _ := fakeChat(t, "not json at all")
	c := newTestClient(t, srv)
	if _, err := c.Generate(context.Background(), Request{ID: "x", Topic: "t", Choice: 1}); err == nil {
		t.Fatal("expected parse error")
	}
}
