package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jdelaney/capstone-planner/internal/domain"
	"github.com/jdelaney/capstone-planner/internal/identity"
	"github.com/jdelaney/capstone-planner/internal/llm"
	"github.com/jdelaney/capstone-planner/internal/planner"
)

// TurnProcessor is the conversation controller boundary.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, in planner.TurnInput) (*planner.TurnResult, error)
}

// PlanHandler handles the conversation/plan-generation endpoint.
type PlanHandler struct {
	*Handler
	controller TurnProcessor
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(base *Handler, controller TurnProcessor) *PlanHandler {
	return &PlanHandler{Handler: base, controller: controller}
}

// RegisterRoutes registers the plan routes.
func (h *PlanHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/plan", h.HandleTurn)
}

type planTurnRequest struct {
	Message                  string                    `json:"message"`
	Conversation             []domain.Message          `json:"conversation"`
	GenerateCapstonePlanData bool                      `json:"generateCapstonePlanData"`
	TurnCount                *int                      `json:"turnCount,omitempty"`
	Phase                    *domain.ConversationPhase `json:"phase,omitempty"`
	OnboardingData           *domain.OnboardingData    `json:"onboardingData,omitempty"`
}

type planTurnResponse struct {
	Response         string                   `json:"response"`
	CapstonePlanData *domain.CapstonePlanData `json:"capstonePlanData,omitempty"`
	Phase            domain.ConversationPhase `json:"phase"`
	TurnCount        int                      `json:"turnCount"`
	SuggestedReplies []string                 `json:"suggestedReplies,omitempty"`
}

// HandleTurn processes one conversation turn. The caller may supply the
// authoritative state inline; otherwise the persisted session state is used.
// The updated state and transcript are persisted before responding.
func (h *PlanHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req planTurnRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Message == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	if !h.cfg.LLM.Configured() {
		Error(w, http.StatusInternalServerError, "missing OPENAI_API_KEY")
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

	in := planner.TurnInput{
		Message:      req.Message,
		Transcript:   sess.Transcript,
		State:        sess.State,
		Onboarding:   sess.Onboarding(),
		GeneratePlan: req.GenerateCapstonePlanData,
	}

	// Clients that manage state themselves may thread it through the
	// request; it wins over the persisted copy.
	if req.Conversation != nil {
		in.Transcript = req.Conversation
	}
	if req.TurnCount != nil {
		in.State.TurnCount = *req.TurnCount
	}
	if req.Phase != nil {
		in.State.Phase = *req.Phase
	}
	if req.OnboardingData != nil {
		in.Onboarding = req.OnboardingData
	}

	result, err := h.controller.ProcessTurn(r.Context(), in)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}

	// Persist the outcome: transcript grows append-only, state advances.
	sess.Transcript = append(in.Transcript, domain.Message{Role: "user", Content: req.Message})
	if !result.Generated {
		sess.Transcript = append(sess.Transcript, domain.Message{
			Role:             "assistant",
			Content:          result.Response,
			SuggestedReplies: result.SuggestedReplies,
		})
	}
	sess.State = result.State
	if result.Plan != nil {
		sess.Plan = result.Plan
	}
	if req.OnboardingData != nil {
		sess.StudentName = req.OnboardingData.Name
		sess.CTEPathway = req.OnboardingData.CTEPathway
	}
	sess.UpdatedAt = time.Now()
	if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
		slog.Error("failed to persist planning session", "user_id", userID, "error", err)
	}

	if result.Generated {
		h.writeGeneratedPlan(w, result)
		return
	}

	JSON(w, http.StatusOK, planTurnResponse{
		Response:         result.Response,
		CapstonePlanData: result.Plan,
		Phase:            result.State.Phase,
		TurnCount:        result.State.TurnCount,
		SuggestedReplies: result.SuggestedReplies,
	})
}

// writeGeneratedPlan returns the full plan record merged with the session
// state fields, matching the generation response contract.
func (h *PlanHandler) writeGeneratedPlan(w http.ResponseWriter, result *planner.TurnResult) {
	data, err := json.Marshal(result.Plan)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to encode plan")
		return
	}
	var merged map[string]interface{}
	if err := json.Unmarshal(data, &merged); err != nil {
		Error(w, http.StatusInternalServerError, "failed to encode plan")
		return
	}
	merged["phase"] = result.State.Phase
	merged["turnCount"] = result.State.TurnCount

	JSON(w, http.StatusOK, merged)
}

// writeTurnError maps controller and transport errors onto the API's
// error taxonomy.
func (h *PlanHandler) writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrEmptyMessage):
		Error(w, http.StatusBadRequest, "message is required")
	case llm.IsRateLimited(err):
		Error(w, http.StatusTooManyRequests, "model service is rate limited, try again shortly")
	case llm.IsTimeout(err):
		Error(w, http.StatusGatewayTimeout, "model service timed out")
	case errors.Is(err, planner.ErrNonJSONResponse):
		ErrorWithDetails(w, http.StatusBadGateway, "non-JSON response from model", err.Error())
	case errors.Is(err, planner.ErrInvalidPlanShape):
		ErrorWithDetails(w, http.StatusBadGateway, "invalid plan format", err.Error())
	default:
		slog.Error("conversation turn failed", "error", err)
		ErrorWithDetails(w, http.StatusBadGateway, "failed to get response from model", err.Error())
	}
}
