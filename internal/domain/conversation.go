// Package domain contains core domain types for the capstone planner.
package domain

// ConversationPhase identifies where a planning session is in its lifecycle.
type ConversationPhase string

const (
	// PhaseBrainstorm is the free-form guided Q&A phase.
	PhaseBrainstorm ConversationPhase = "brainstorm"
	// PhaseReview means a plan has been generated and awaits confirmation.
	PhaseReview ConversationPhase = "review"
	// PhaseComplete means the plan has been finalized or exported.
	PhaseComplete ConversationPhase = "complete"
)

// Valid reports whether p is one of the known phases.
func (p ConversationPhase) Valid() bool {
	switch p {
	case PhaseBrainstorm, PhaseReview, PhaseComplete:
		return true
	}
	return false
}

// Terminal reports whether free-form conversation is over. Once a session
// reaches review or complete the only legal operation is plan (re)generation.
func (p ConversationPhase) Terminal() bool {
	return p == PhaseReview || p == PhaseComplete
}

// ConversationState tracks turn bookkeeping for one planning session.
// TurnCount never decreases and the phase never moves backward; an explicit
// session reset is the only way back to brainstorm.
type ConversationState struct {
	TurnCount int               `json:"turnCount"`
	Phase     ConversationPhase `json:"phase"`
}

// NewConversationState returns the initial state for a fresh session.
func NewConversationState() ConversationState {
	return ConversationState{TurnCount: 0, Phase: PhaseBrainstorm}
}

// Message is one transcript entry. The transcript is append-only and its
// order is meaningful: it is replayed verbatim to the model as context.
type Message struct {
	Role             string   `json:"role"` // "user" or "assistant"
	Content          string   `json:"content"`
	SuggestedReplies []string `json:"suggestedReplies,omitempty"`
}

// OnboardingData carries the student context captured by the onboarding form.
// The pathway chosen here is authoritative over anything the model guesses.
type OnboardingData struct {
	Name       string `json:"name"`
	CTEPathway string `json:"ctePathway"`
}
