package planner

import (
	"fmt"
	"strings"

	"github.com/jdelaney/capstone-planner/internal/domain"
)

// finalizePhrase is the terminal phrase the model is instructed to emit once
// it judges the conversation has gathered enough information.
const finalizePhrase = "Let's finalize your capstone plan. Ready to review your project?"

// reviewTriggers advance the phase to review when they appear in an
// assistant reply, matched case-insensitively as substrings.
var reviewTriggers = []string{
	"let's finalize your capstone plan",
	"ready to review",
	"finalize your capstone",
}

// containsReviewTrigger reports whether an assistant reply asks to move to
// the review phase.
func containsReviewTrigger(reply string) bool {
	lower := strings.ToLower(reply)
	for _, trigger := range reviewTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// conversationSystemPrompt builds the system instruction for a free-form
// brainstorm turn, including the per-turn countdown indicator.
func conversationSystemPrompt(turnCount, maxTurns int) string {
	turnsRemaining := maxTurns - turnCount - 1

	var indicator string
	switch {
	case turnsRemaining <= 0:
		indicator = fmt.Sprintf("This is your final question. After this response, you MUST stop asking questions and output: '%s'", finalizePhrase)
	case turnsRemaining == 1:
		indicator = fmt.Sprintf("This is question %d of %d - this is your LAST question. After this response, you MUST stop asking questions.", turnCount+1, maxTurns)
	default:
		indicator = fmt.Sprintf("This is question %d of %d. You have %d questions remaining.", turnCount+1, maxTurns, turnsRemaining)
	}

	return strings.Join([]string{
		"You are a helpful assistant/guidance counselor for High School CTE pathway capstone planning.",
		"Start by giving a list of CTE pathways and their descriptions, then ask the student what they are interested in, then help them choose a pathway based on their interests and skills.",
		"IMPORTANT: answers should be brief, one sentence length if possible, concise, conversational and on point. These are high school students, so keep it simple and easy to understand.",
		"Under no circumstance should you return explicit content or language, no images, no links, no code, nothing that is not related to the capstone project planning.",
		"Your role is to guide students through planning their capstone project by asking thoughtful questions.",
		"Keep responses conversational, friendly, and focused on CTE pathway topics.",
		"Ask questions to understand their interests, skills, and goals.",
		"",
		fmt.Sprintf("STRICT RULE: You will ask the student up to %d questions to clarify their project. After that, you MUST stop asking questions and output: '%s'", maxTurns, finalizePhrase),
		fmt.Sprintf("Do NOT ask more than %d questions total.", maxTurns),
		"",
		indicator,
	}, "\n")
}

// planSchemaDescription is the JSON shape the model must return for plan
// generation. Optional sub-records must be populated with best-effort
// defaults or empty collections when information is absent.
const planSchemaDescription = `{
  "title": "string",
  "ctePathway": "string",
  "objectives": ["string"],
  "deliverables": ["string"],
  "timeline": [{"phase": "string", "weeks": 0, "tasks": ["string"]}],
  "assessment": ["string"],
  "resources": ["string"],
  "projectProposal": {"problemStatement": "string", "summary": "string", "researchSources": ["string"]},
  "workBasedLearning": {"activityType": "internship|job_shadow|mentorship|volunteer|school_based", "organization": "string", "supervisor": "string", "hours": "string", "description": "string"},
  "deliverablesDetail": {"product": "string", "portfolioItems": ["string"], "evidence": ["string"]},
  "presentation": {"format": "slides|demo|speech|panel", "audience": "string", "date": "string", "materials": ["string"]},
  "reflection": {"postsecondaryGoal": "string", "skillsGained": ["string"], "careerConnection": "string"},
  "rubric": {"criteria": ["string"], "scoringNotes": "string"}
}`

// generationSystemPrompt builds the system instruction for structured plan
// generation. The same contract is used regardless of the current phase.
func generationSystemPrompt() string {
	return strings.Join([]string{
		"Under no circumstance should you return explicit content or language, no images, no links, no code, nothing that is not related to the capstone project planning.",
		"You are a helpful assistant/guidance counselor for High School CTE pathway capstone planning.",
		"Based on the conversation, generate a complete capstone project plan in JSON format.",
		"The conversation is career focused: finding the student's interests and skills, guiding them toward a career path, then planning their capstone project.",
		"Return ONLY valid JSON with this structure:",
		planSchemaDescription,
		"Populate every field. When the conversation did not cover a section, fill it with reasonable best-effort defaults or empty collections rather than omitting it.",
		"Keep all text brief, concrete and readable for a high school student.",
	}, "\n")
}

// flattenTranscript renders a transcript as "role: content" lines for the
// generation summary prompt.
func flattenTranscript(transcript []domain.Message, fallback string) string {
	if len(transcript) == 0 {
		return fallback
	}
	lines := make([]string, 0, len(transcript))
	for _, msg := range transcript {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

// onboardingPreamble prefixes the very first user message with the student's
// onboarding context so the model can greet them by name and pathway.
func onboardingPreamble(ob *domain.OnboardingData) string {
	if ob == nil {
		return ""
	}
	var parts []string
	if ob.Name != "" {
		parts = append(parts, "My name is "+ob.Name+".")
	}
	if ob.CTEPathway != "" {
		parts = append(parts, "I chose the "+ob.CTEPathway+" CTE pathway.")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + "\n\n"
}
