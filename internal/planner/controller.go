// Package planner implements the turn-bounded conversation controller that
// guides a student toward a structured capstone plan. The controller is
// stateless: the caller supplies the authoritative state and transcript on
// every call and persists whatever comes back.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jdelaney/capstone-planner/internal/domain"
	"github.com/jdelaney/capstone-planner/internal/llm"
)

// MaxTurns bounds the number of assistant question-turns in brainstorm.
const MaxTurns = 5

// chatTemperature keeps free-form replies mildly varied; generation calls
// run at 0 for determinism.
const chatTemperature = 0.2

var (
	// ErrEmptyMessage is returned when a turn arrives without a message.
	// No network call is made.
	ErrEmptyMessage = errors.New("message is required")

	// ErrNonJSONResponse is returned when the model was asked for JSON and
	// replied with something that does not parse as an object.
	ErrNonJSONResponse = errors.New("model returned non-JSON response")

	// ErrInvalidPlanShape is returned when the model's JSON parsed but does
	// not satisfy the plan schema.
	ErrInvalidPlanShape = errors.New("model returned an invalid plan")
)

// Completer is the external completion collaborator.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// TurnInput is everything the controller needs for one turn. State is
// caller-owned; the controller never mutates it in place.
type TurnInput struct {
	Message      string
	Transcript   []domain.Message
	State        domain.ConversationState
	Onboarding   *domain.OnboardingData
	GeneratePlan bool
}

// TurnResult is the outcome of one processed turn. Exactly one of Response
// (conversational) or Generated (plan generation) describes the turn; a
// conversational turn may still carry an opportunistically salvaged plan.
type TurnResult struct {
	Response         string
	Plan             *domain.CapstonePlanData
	State            domain.ConversationState
	SuggestedReplies []string
	Generated        bool
}

// Controller decides, per user turn, whether to continue the guided
// conversation or force structured plan generation.
type Controller struct {
	completer Completer
	logger    *slog.Logger
}

// New creates a Controller backed by the given completion collaborator.
func New(completer Completer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{completer: completer, logger: logger}
}

// ProcessTurn runs the phase state machine for one user message.
//
// Generation wins over conversation whenever any of these hold: the caller
// explicitly asked for a plan, the session already left brainstorm, or the
// turn ceiling has been reached. Terminal phases never regress.
func (c *Controller) ProcessTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	if in.Message == "" {
		return nil, ErrEmptyMessage
	}

	state := in.State
	if !state.Phase.Valid() {
		state.Phase = domain.PhaseBrainstorm
	}
	if state.TurnCount < 0 {
		state.TurnCount = 0
	}

	switch {
	case state.Phase.Terminal():
		// Already in review/complete: even a nominal "continue chatting"
		// call is treated as forced generation, skipping the extra
		// round trip a literal re-check would cost.
		return c.generatePlan(ctx, in, state, domain.PhaseComplete)
	case state.TurnCount >= MaxTurns:
		return c.generatePlan(ctx, in, state, domain.PhaseReview)
	case in.GeneratePlan:
		return c.generatePlan(ctx, in, state, domain.PhaseReview)
	default:
		return c.converse(ctx, in, state)
	}
}

// converse runs one free-form brainstorm exchange.
func (c *Controller) converse(ctx context.Context, in TurnInput, state domain.ConversationState) (*TurnResult, error) {
	messages := make([]llm.Message, 0, len(in.Transcript)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: conversationSystemPrompt(state.TurnCount, MaxTurns),
	})
	for _, msg := range in.Transcript {
		if msg.Role != "user" && msg.Role != "assistant" {
			continue
		}
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	userContent := in.Message
	if len(in.Transcript) == 0 {
		// Onboarding context rides along on the very first turn only.
		userContent = onboardingPreamble(in.Onboarding) + userContent
	}
	messages = append(messages, llm.Message{Role: "user", Content: userContent})

	temp := chatTemperature
	resp, err := c.completer.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: &temp,
	})
	if err != nil {
		return nil, fmt.Errorf("conversation completion: %w", err)
	}

	turnsRemaining := MaxTurns - state.TurnCount - 1
	nextState := domain.ConversationState{
		TurnCount: state.TurnCount + 1,
		Phase:     state.Phase,
	}
	if turnsRemaining <= 0 || containsReviewTrigger(resp.Content) {
		nextState.Phase = domain.PhaseReview
	}

	result := &TurnResult{
		Response:         resp.Content,
		State:            nextState,
		SuggestedReplies: fallbackSuggestions(nextState.Phase, nextState.TurnCount),
	}

	// Best-effort: if the reply happens to embed a usable plan, surface it.
	// Never required for correctness; any ambiguity degrades to "no plan".
	if plan := salvagePlan(resp.Content); plan != nil {
		result.Plan = plan
	}

	return result, nil
}

// generatePlan runs a structured generation call and validates the output.
// nextPhase is what the session advances to on success.
func (c *Controller) generatePlan(ctx context.Context, in TurnInput, state domain.ConversationState, nextPhase domain.ConversationPhase) (*TurnResult, error) {
	var messages []llm.Message

	if in.GeneratePlan {
		// Explicit request: replay the full transcript for maximum context.
		messages = make([]llm.Message, 0, len(in.Transcript)+2)
		messages = append(messages, llm.Message{Role: "system", Content: generationSystemPrompt()})
		for _, msg := range in.Transcript {
			if msg.Role != "user" && msg.Role != "assistant" {
				continue
			}
			messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
		}
		messages = append(messages, llm.Message{Role: "user", Content: in.Message})
	} else {
		// Forced transition: a flattened summary keeps the prompt compact.
		summary := flattenTranscript(in.Transcript, in.Message)
		messages = []llm.Message{
			{Role: "system", Content: generationSystemPrompt()},
			{Role: "user", Content: "Generate a complete capstone project plan based on this conversation:\n\n" + summary},
		}
	}

	temp := 0.0
	resp, err := c.completer.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: &temp,
		JSONOnly:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("plan generation completion: %w", err)
	}

	plan, err := domain.ParsePlan([]byte(resp.Content))
	if err != nil {
		c.logger.Warn("plan generation returned non-JSON content", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrNonJSONResponse, err)
	}

	// Onboarding pathway is authoritative over the model's guess.
	if in.Onboarding != nil && in.Onboarding.CTEPathway != "" && plan.CTEPathway != in.Onboarding.CTEPathway {
		plan.CTEPathway = in.Onboarding.CTEPathway
	}

	if err := plan.Validate(); err != nil {
		c.logger.Warn("plan generation returned invalid shape", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlanShape, err)
	}

	return &TurnResult{
		Plan:      plan,
		Generated: true,
		State: domain.ConversationState{
			TurnCount: state.TurnCount,
			Phase:     nextPhase,
		},
	}, nil
}

// salvagePlan tries to extract a usable partial plan from free text.
// It always degrades to nil on any ambiguity and never errors.
func salvagePlan(content string) *domain.CapstonePlanData {
	raw := llm.ExtractJSON(content)
	if raw == "" {
		return nil
	}
	plan, err := domain.ParsePlan([]byte(raw))
	if err != nil || !plan.Usable() {
		return nil
	}
	return plan
}
