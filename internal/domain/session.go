package domain

import (
	"time"
)

// PlanningSession is the persisted state of one student's planning session.
// The conversation controller itself is stateless; this record is what the
// calling layer threads through each turn.
type PlanningSession struct {
	UserID      string            `json:"user_id"`
	StudentName string            `json:"student_name,omitempty"`
	CTEPathway  string            `json:"cte_pathway,omitempty"`
	State       ConversationState `json:"state"`
	Transcript  []Message         `json:"transcript"`
	Plan        *CapstonePlanData `json:"plan,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewPlanningSession creates a fresh session in the initial brainstorm state.
func NewPlanningSession(userID string) *PlanningSession {
	now := time.Now()
	return &PlanningSession{
		UserID:    userID,
		State:     NewConversationState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset returns the session to its initial state, discarding the transcript
// and any generated plan. Onboarding data is cleared as well; a new
// onboarding submission repopulates it.
func (s *PlanningSession) Reset() {
	s.StudentName = ""
	s.CTEPathway = ""
	s.State = NewConversationState()
	s.Transcript = nil
	s.Plan = nil
	s.UpdatedAt = time.Now()
}

// Onboarding returns the session's onboarding context, or nil if the
// student has not completed onboarding.
func (s *PlanningSession) Onboarding() *OnboardingData {
	if s.StudentName == "" && s.CTEPathway == "" {
		return nil
	}
	return &OnboardingData{Name: s.StudentName, CTEPathway: s.CTEPathway}
}
