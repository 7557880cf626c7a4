package fireworks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete(t *testing.T) {
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"text": " sure, see you at 8", "finish_reason": "stop"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", "accounts/acme/models/persona")
	c.apiURL = srv.URL

	got, err := c.Complete(context.Background(), "<chat> Sarah </chat>\n<Sarah>", []string{"</Sarah>"}, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != " sure, see you at 8" {
		t.Errorf("completion = %q", got)
	}

	if gotReq.Model != "accounts/acme/models/persona" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.MaxTokens != 500 {
		t.Errorf("max_tokens = %d", gotReq.MaxTokens)
	}
	if len(gotReq.Stop) != 1 || gotReq.Stop[0] != "</Sarah>" {
		t.Errorf("stop = %v", gotReq.Stop)
	}
}

func TestComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"type": "authentication_error", "message": "bad key"},
		})
	}))
	defer srv.Close()

	c := NewClient("bad-key", "m")
	c.apiURL = srv.URL

	_, err := c.Complete(context.Background(), "p", nil, 10)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient("k", "m")
	c.apiURL = srv.URL

	if _, err := c.Complete(context.Background(), "p", nil, 10); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
