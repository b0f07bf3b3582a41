package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kalambet/autoreply/internal/analysis"
	"github.com/kalambet/autoreply/internal/engine"
	"github.com/kalambet/autoreply/internal/relationship"
	"github.com/kalambet/autoreply/internal/reply"
	"github.com/kalambet/autoreply/internal/storage"
)

const testToken = "test-token-12345"

type mockChecker struct {
	err error
}

func (m mockChecker) Check(context.Context) error { return m.err }

func setupAppHandler(t *testing.T, token string) (http.Handler, *mockReplier, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := &mockReplier{result: reply.Result{
		Text:         "Hi Alice! I'm busy at the moment but will respond soon.",
		Source:       reply.SourceFallback,
		Relationship: relationship.Acquaintance,
		Analysis:     analysis.Result{Urgency: analysis.UrgencyNormal, Sentiment: analysis.Neutral, QuestionType: analysis.QuestionNone},
		Err:          engine.ErrNotConfigured,
	}}

	handler := NewAppHandler(AppDeps{
		Replier: r,
		Profile: newTestProfile(t),
		Replies: store,
		Token:   token,
	})
	return handler, r, store
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestReply_Success(t *testing.T) {
	h, r, _ := setupAppHandler(t, testToken)

	body := `{"message":"hello","contact":"Alice","history":[{"text":"hey there","fromMe":true}]}`
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPost, "/v1/reply", body, testToken))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["reply"] != "Hi Alice! I'm busy at the moment but will respond soon." {
		t.Errorf("reply = %v", resp["reply"])
	}
	if resp["source"] != "fallback" || resp["relationship"] != "acquaintance" {
		t.Errorf("response = %v", resp)
	}
	if resp["error"] != engine.ErrNotConfigured.Error() {
		t.Errorf("error = %v", resp["error"])
	}
	a, ok := resp["analysis"].(map[string]any)
	if !ok || a["question_type"] != "none" {
		t.Errorf("analysis = %v", resp["analysis"])
	}

	if len(r.calls) != 1 || r.calls[0].contact != "Alice" || len(r.calls[0].history) != 1 {
		t.Errorf("calls = %+v", r.calls)
	}
}

func TestReply_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing message", `{"contact":"Alice"}`},
		{"blank contact", `{"message":"hi","contact":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, r, _ := setupAppHandler(t, "")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, authReq(http.MethodPost, "/v1/reply", tt.body, ""))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			var resp struct {
				Error struct {
					Type string `json:"type"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}
			if resp.Error.Type != "invalid_request_error" {
				t.Errorf("error type = %q", resp.Error.Type)
			}
			if len(r.calls) != 0 {
				t.Error("replier should not be called")
			}
		})
	}
}

func TestAuth(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", testToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, authReq(http.MethodGet, "/v1/profile", "", tt.token))
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if rr.Code == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, ok := bearerToken(req)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestHealth_NoAuth(t *testing.T) {
	h, _, _ := setupAppHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var resp map[string]string
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q", resp["status"])
	}
}

func TestHealth_Degraded(t *testing.T) {
	h := NewAppHandler(AppDeps{
		Replier: &mockReplier{},
		Profile: newTestProfile(t),
		Health:  mockChecker{err: errors.New("ollama not reachable")},
		Model:   "llama3.2",
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp["status"] != "degraded" || resp["model"] != "llama3.2" || !strings.Contains(resp["model_error"], "not reachable") {
		t.Errorf("resp = %v", resp)
	}
}

func TestGetProfile_Empty(t *testing.T) {
	h, _, _ := setupAppHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/v1/profile", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp profileResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !resp.Profile.IsEmpty() {
		t.Errorf("Profile = %+v, want empty", resp.Profile)
	}
	if resp.Summary != "Communication style: not yet learned." {
		t.Errorf("Summary = %q", resp.Summary)
	}
}

func TestListReplies(t *testing.T) {
	h, _, store := setupAppHandler(t, "")
	ctx := context.Background()
	for _, c := range []string{"Alice", "Bob", "Alice"} {
		if _, err := store.SaveReply(ctx, storage.Reply{Contact: c, Message: "m", Reply: "r", Source: "model"}); err != nil {
			t.Fatalf("SaveReply: %v", err)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/v1/replies?contact=Alice&limit=10", "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var replies []storage.Reply
	if err := json.Unmarshal(rr.Body.Bytes(), &replies); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	for _, r := range replies {
		if r.Contact != "Alice" {
			t.Errorf("unexpected contact %q", r.Contact)
		}
	}
}

func TestGetReply(t *testing.T) {
	h, _, store := setupAppHandler(t, "")
	saved, err := store.SaveReply(context.Background(), storage.Reply{Contact: "Bob", Message: "m", Reply: "r", Source: "fallback"})
	if err != nil {
		t.Fatalf("SaveReply: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/v1/replies/"+saved.ID, "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got storage.Reply
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.ID != saved.ID || got.Contact != "Bob" {
		t.Errorf("reply = %+v", got)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/v1/replies/missing", "", ""))
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing reply status = %d, want 404", rr.Code)
	}
}

func TestListReplies_EmptyIsArray(t *testing.T) {
	h, _, _ := setupAppHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/v1/replies", "", ""))
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestListReplies_NotMountedWithoutStore(t *testing.T) {
	h := NewAppHandler(AppDeps{Replier: &mockReplier{}, Profile: newTestProfile(t)})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/replies", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=5", 5},
		{"limit=0", 20},
		{"limit=-3", 20},
		{"limit=abc", 20},
		{"limit=500", 100},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/v1/replies?"+tt.query, nil)
		if got := parseIntParam(r, "limit", 20, 100); got != tt.want {
			t.Errorf("parseIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}
