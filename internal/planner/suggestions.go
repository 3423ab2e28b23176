package planner

import (
	"github.com/jdelaney/capstone-planner/internal/domain"
)

// fallbackSuggestions returns suggestion chips for the student's next reply,
// bucketed by how far into the brainstorm the conversation is. Terminal
// phases get none; the review UI takes over there.
func fallbackSuggestions(phase domain.ConversationPhase, turnCount int) []string {
	if phase.Terminal() {
		return nil
	}

	if turnCount <= 1 {
		return []string{
			"I'm interested in helping my community",
			"I want to explore a career I'm passionate about",
			"I have an idea for a project that solves a real problem",
			"I'm not sure yet, can you help me brainstorm?",
		}
	}

	if turnCount <= 3 {
		return []string{
			"I want to create a product or service",
			"I plan to work with a local business or organization",
			"I'd like to document my process and progress",
			"I want to get feedback from professionals",
		}
	}

	return []string{
		"I'm ready to finalize my plan",
		"Let me add more details first",
		"Can you help me refine my timeline?",
		"I want to review what we have so far",
	}
}
