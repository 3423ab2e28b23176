package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jdelaney/capstone-planner/internal/domain"
	"github.com/jdelaney/capstone-planner/internal/identity"
)

// SessionHandler handles planning session state endpoints.
type SessionHandler struct {
	*Handler
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *Handler) *SessionHandler {
	return &SessionHandler{Handler: base}
}

// RegisterRoutes registers session routes.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/onboarding", h.Onboarding)
		r.Post("/reset", h.Reset)
		r.Patch("/plan", h.EditPlan)
	})
}

// Get returns the caller's planning session state.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess, err := h.repo.GetSession(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load planning session", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if sess == nil {
		sess = domain.NewPlanningSession(userID)
	}

	JSON(w, http.StatusOK, sess)
}

type onboardingRequest struct {
	Name       string `json:"name"`
	CTEPathway string `json:"ctePathway"`
}

// Onboarding starts a fresh planning session with the student's context.
// Any prior conversation and plan are discarded.
func (h *SessionHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req onboardingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}

	sess := domain.NewPlanningSession(userID)
	sess.StudentName = req.Name
	sess.CTEPathway = req.CTEPathway

	if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
		slog.Error("failed to save onboarding", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to save session")
		return
	}

	JSON(w, http.StatusOK, sess)
}

// Reset discards the session and returns to the initial brainstorm state.
// This is the only way a session moves backward.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.repo.DeleteSession(r.Context(), userID); err != nil {
		slog.Error("failed to reset session", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	sess := domain.NewPlanningSession(userID)
	if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
		slog.Error("failed to recreate session", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	JSON(w, http.StatusOK, sess)
}

type planEditRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// EditPlan replaces one top-level plan field from the review UI, leaving the
// rest of the plan untouched.
func (h *SessionHandler) EditPlan(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req planEditRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Field == "" || len(req.Value) == 0 {
		Error(w, http.StatusBadRequest, "field and value are required")
		return
	}

	sess, err := h.repo.GetSession(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load planning session", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if sess == nil || sess.Plan == nil {
		Error(w, http.StatusBadRequest, "no plan to edit; generate one first")
		return
	}

	if err := sess.Plan.ApplyFieldEdit(req.Field, req.Value); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.UpdatedAt = time.Now()
	if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
		slog.Error("failed to persist plan edit", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to save plan")
		return
	}

	JSON(w, http.StatusOK, sess.Plan)
}
