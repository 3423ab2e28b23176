package domain

import (
	"encoding/json"
	"fmt"
)

// TimelinePhase is one phase of the project timeline.
type TimelinePhase struct {
	Phase string   `json:"phase"`
	Weeks int      `json:"weeks"`
	Tasks []string `json:"tasks"`
}

// ProjectProposal describes the proposal section of a plan. All fields are
// optional; absent values render as placeholders in the exported document.
type ProjectProposal struct {
	ProblemStatement string   `json:"problemStatement,omitempty"`
	Summary          string   `json:"summary,omitempty"`
	ResearchSources  []string `json:"researchSources,omitempty"`
}

// WorkBasedLearning records the work-based learning component of a capstone.
type WorkBasedLearning struct {
	ActivityType string `json:"activityType,omitempty"` // internship, job_shadow, mentorship, volunteer, school_based
	Organization string `json:"organization,omitempty"`
	Supervisor   string `json:"supervisor,omitempty"`
	Hours        string `json:"hours,omitempty"`
	Description  string `json:"description,omitempty"`
}

// DeliverablesDetail expands on the top-level deliverables list.
type DeliverablesDetail struct {
	Product        string   `json:"product,omitempty"`
	PortfolioItems []string `json:"portfolioItems,omitempty"`
	Evidence       []string `json:"evidence,omitempty"`
}

// Presentation describes the public presentation of the finished project.
type Presentation struct {
	Format    string   `json:"format,omitempty"` // slides, demo, speech, panel
	Audience  string   `json:"audience,omitempty"`
	Date      string   `json:"date,omitempty"`
	Materials []string `json:"materials,omitempty"`
}

// Reflection captures the student's reflection and postsecondary connection.
type Reflection struct {
	PostsecondaryGoal string   `json:"postsecondaryGoal,omitempty"`
	SkillsGained      []string `json:"skillsGained,omitempty"`
	CareerConnection  string   `json:"careerConnection,omitempty"`
}

// Rubric lists how the project will be scored.
type Rubric struct {
	Criteria     []string `json:"criteria,omitempty"`
	ScoringNotes string   `json:"scoringNotes,omitempty"`
}

// CapstonePlanData is the structured plan produced from the conversation.
// It originates as model output, so it must always pass through Validate
// before being treated as usable.
type CapstonePlanData struct {
	Title        string          `json:"title"`
	CTEPathway   string          `json:"ctePathway"`
	Objectives   []string        `json:"objectives"`
	Deliverables []string        `json:"deliverables"`
	Timeline     []TimelinePhase `json:"timeline"`
	Assessment   []string        `json:"assessment"`
	Resources    []string        `json:"resources"`

	ProjectProposal    *ProjectProposal    `json:"projectProposal,omitempty"`
	WorkBasedLearning  *WorkBasedLearning  `json:"workBasedLearning,omitempty"`
	DeliverablesDetail *DeliverablesDetail `json:"deliverablesDetail,omitempty"`
	Presentation       *Presentation       `json:"presentation,omitempty"`
	Reflection         *Reflection         `json:"reflection,omitempty"`
	Rubric             *Rubric             `json:"rubric,omitempty"`
}

// Usable reports the minimum validity bar used throughout the system to
// decide "is this a usable plan": non-empty title and pathway.
func (p *CapstonePlanData) Usable() bool {
	return p != nil && p.Title != "" && p.CTEPathway != ""
}

// Validate checks the shape of a plan parsed from untrusted model output.
func (p *CapstonePlanData) Validate() error {
	if p == nil {
		return fmt.Errorf("plan is nil")
	}
	if p.Title == "" {
		return fmt.Errorf("plan is missing a title")
	}
	if p.CTEPathway == "" {
		return fmt.Errorf("plan is missing a CTE pathway")
	}
	for i, tp := range p.Timeline {
		if tp.Phase == "" {
			return fmt.Errorf("timeline entry %d is missing a phase name", i)
		}
	}
	return nil
}

// ParsePlan decodes a JSON document into a plan. The document must be a
// non-null, non-array JSON object.
func ParsePlan(data []byte) (*CapstonePlanData, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}
	if _, ok := probe.(map[string]any); !ok {
		return nil, fmt.Errorf("plan JSON is not an object")
	}

	var plan CapstonePlanData
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode plan fields: %w", err)
	}
	return &plan, nil
}

// ApplyFieldEdit replaces one top-level field of the plan with a new value,
// leaving every other field untouched. rawValue is the JSON encoding of the
// replacement. Unknown field names are rejected.
func (p *CapstonePlanData) ApplyFieldEdit(field string, rawValue json.RawMessage) error {
	set := func(dst any) error {
		if err := json.Unmarshal(rawValue, dst); err != nil {
			return fmt.Errorf("decode value for field %q: %w", field, err)
		}
		return nil
	}

	switch field {
	case "title":
		return set(&p.Title)
	case "ctePathway":
		return set(&p.CTEPathway)
	case "objectives":
		return set(&p.Objectives)
	case "deliverables":
		return set(&p.Deliverables)
	case "timeline":
		return set(&p.Timeline)
	case "assessment":
		return set(&p.Assessment)
	case "resources":
		return set(&p.Resources)
	case "projectProposal":
		return set(&p.ProjectProposal)
	case "workBasedLearning":
		return set(&p.WorkBasedLearning)
	case "deliverablesDetail":
		return set(&p.DeliverablesDetail)
	case "presentation":
		return set(&p.Presentation)
	case "reflection":
		return set(&p.Reflection)
	case "rubric":
		return set(&p.Rubric)
	default:
		return fmt.Errorf("unknown plan field %q", field)
	}
}
