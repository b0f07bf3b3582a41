package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/autoreply/internal/conversation"
	"github.com/kalambet/autoreply/internal/profile"
	"github.com/kalambet/autoreply/internal/reply"
	"github.com/kalambet/autoreply/internal/storage"
	"github.com/kalambet/autoreply/internal/style"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Replier produces one reply per incoming message. Implemented by reply.Generator.
type Replier interface {
	Generate(ctx context.Context, message, contact string, history []conversation.Message) reply.Result
}

// ReplyLister reads the reply log. Implemented by storage.Store.
type ReplyLister interface {
	RecentReplies(ctx context.Context, limit int, contact string) ([]storage.Reply, error)
	GetReply(ctx context.Context, id string) (storage.Reply, error)
}

// HealthChecker reports whether the model backend is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type AppDeps struct {
	Replier Replier
	Profile *profile.Manager
	Replies ReplyLister   // optional; if nil, /v1/replies is not mounted
	Health  HealthChecker // optional; if nil, /health reports the process only
	Model   string
	Token   string // optional; if empty, requests are not authenticated
}

// ReplyRequest is the body of POST /v1/reply.
type ReplyRequest struct {
	Message string                 `json:"message"`
	Contact string                 `json:"contact"`
	History []conversation.Message `json:"history"`
}

type replyResponse struct {
	reply.Result
	Error string `json:"error,omitempty"`
}

type profileResponse struct {
	Profile style.Profile `json:"profile"`
	Summary string        `json:"summary"`
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth(deps))

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(BearerAuth(deps.Token))
		}
		r.Post("/v1/reply", handleReply(deps))
		r.Get("/v1/profile", handleGetProfile(deps))
		if deps.Replies != nil {
			r.Get("/v1/replies", handleListReplies(deps))
			r.Get("/v1/replies/{id}", handleGetReply(deps))
		}
	})

	return r
}

func handleHealth(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if deps.Model != "" {
			status["model"] = deps.Model
		}
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel()
			if err := deps.Health.Check(ctx); err != nil {
				// Replies still work through the fallback responder.
				status["status"] = "degraded"
				status["model_error"] = err.Error()
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func handleReply(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req ReplyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message is required")
			return
		}
		if strings.TrimSpace(req.Contact) == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "contact is required")
			return
		}

		res := deps.Replier.Generate(r.Context(), req.Message, req.Contact, req.History)
		out := replyResponse{Result: res}
		if res.Err != nil {
			out.Error = res.Err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.GetProfile()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get profile: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profileResponse{Profile: p, Summary: profile.Summarize(p)})
	}
}

func handleListReplies(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntParam(r, "limit", 20, 100)
		contact := r.URL.Query().Get("contact")

		replies, err := deps.Replies.RecentReplies(r.Context(), limit, contact)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list replies: %v", err)
			return
		}
		if replies == nil {
			replies = []storage.Reply{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(replies)
	}
}

func handleGetReply(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := deps.Replies.GetReply(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found_error", "reply not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to get reply: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
	}
}

// parseIntParam reads a positive integer query parameter, falling back to def.
// An upper of 0 means unbounded.
func parseIntParam(r *http.Request, name string, def, upper int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	if upper > 0 && v > upper {
		return upper
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
