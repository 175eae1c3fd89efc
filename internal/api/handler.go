package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/event"
	"github.com/finpulse/finpulse/internal/notify"
	"github.com/finpulse/finpulse/internal/rules"
)

const maxEventBody = 1 << 20 // 1 MiB

// Handler holds all HTTP handler dependencies.
type Handler struct {
	bus    *event.Bus
	svc    *notify.Service
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(bus *event.Bus, svc *notify.Service, loader *config.Loader) http.Handler {
	h := &Handler{bus: bus, svc: svc, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/events", h.ingestEvent)
	h.mux.HandleFunc("GET /v1/notifications", h.listNotifications)
	h.mux.HandleFunc("GET /v1/notifications/unread-count", h.unreadCount)
	h.mux.HandleFunc("POST /v1/notifications/{id}/read", h.markAsRead)
	h.mux.HandleFunc("POST /v1/notifications/read-all", h.markAllAsRead)
	h.mux.HandleFunc("POST /v1/notifications/{id}/dismiss", h.dismiss)
	h.mux.HandleFunc("GET /v1/rules", h.listRules)
	h.mux.HandleFunc("POST /v1/rules/reload", h.reloadRules)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/events — decode the envelope into a typed event and fan it out.
// The producer's request succeeds regardless of what consumers do with it.
func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	ev, err := event.Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ev.User() == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	h.bus.Emit(r.Context(), ev)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"kind":    ev.Kind(),
		"user_id": ev.User(),
	})
}

// GET /v1/notifications?user_id=u1&limit=20&include_read=false&category=spending
func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	h.hydrate(r, userID)

	opts := notify.QueryOptions{
		Category: notify.Category(r.URL.Query().Get("category")),
		Priority: notify.Priority(r.URL.Query().Get("priority")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}
	if v := r.URL.Query().Get("include_read"); v == "false" {
		opts.UnreadOnly = true
	}
	if v := r.URL.Query().Get("include_dismissed"); v == "true" {
		opts.IncludeDismissed = true
	}

	items := h.svc.GetForUser(userID, opts)
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": items,
		"count":         len(items),
	})
}

// GET /v1/notifications/unread-count?user_id=u1
func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	h.hydrate(r, userID)
	writeJSON(w, http.StatusOK, map[string]any{"unread": h.svc.UnreadCount(userID)})
}

// POST /v1/notifications/{id}/read?user_id=u1
func (h *Handler) markAsRead(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	id := r.PathValue("id")
	if err := h.svc.MarkAsRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// POST /v1/notifications/read-all?user_id=u1
func (h *Handler) markAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	affected := h.svc.MarkAllAsRead(r.Context(), userID)
	writeJSON(w, http.StatusOK, map[string]any{"marked_read": affected})
}

// POST /v1/notifications/{id}/dismiss?user_id=u1
func (h *Handler) dismiss(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	id := r.PathValue("id")
	if err := h.svc.Dismiss(r.Context(), id, userID); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /v1/rules — the thresholds currently in effect.
func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rs := h.svc.Rules()
	writeJSON(w, http.StatusOK, map[string]any{
		"overspending_threshold":       rs.OverspendingThreshold,
		"critical_spending_threshold":  rs.CriticalSpendingThreshold,
		"goal_milestones":              rs.GoalMilestones,
		"anomaly_confidence_threshold": rs.AnomalyConfidenceThreshold,
		"insight_relevance_threshold":  rs.InsightRelevanceThreshold,
	})
}

// POST /v1/rules/reload — hot-reload thresholds from disk.
func (h *Handler) reloadRules(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := config.Validate(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rs, err := rules.FromConfig(cfg.Rules)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.svc.SwapRules(rs)
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": true})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the persistence writer queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.svc.WriterUtilization()
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ready",
		"queue_utilization": util,
	})
}

// hydrate pulls the user's stored notifications into memory before a read.
// A store failure degrades to in-memory data; it is logged, never surfaced.
func (h *Handler) hydrate(r *http.Request, userID string) {
	if err := h.svc.EnsureLoaded(r.Context(), userID); err != nil {
		slog.Warn("notification hydration failed", "user_id", userID, "err", err)
	}
}
