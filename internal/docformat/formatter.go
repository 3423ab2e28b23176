// Package docformat renders a capstone plan into a flat text blob plus an
// ordered list of non-overlapping style ranges, ready for one-shot
// submission to the Google Docs API as a single batchUpdate.
package docformat

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/jdelaney/capstone-planner/internal/domain"
)

// Emphasis levels used across the document.
const (
	titleFontSizePt  = 18
	headerFontSizePt = 14
)

// placeholder is the line substituted wherever a plan section has no data.
// The formatter never silently omits a section.
const placeholder = "[To be completed]"

// StyleRange instructs the document API to style one character interval.
// Offsets are Google Docs indexes: 1-based, measured in UTF-16 code units,
// End exclusive. Ranges never include a line's trailing newline.
type StyleRange struct {
	Start      int64
	End        int64
	Bold       bool
	FontSizePt float64
}

// Rendered is the formatter output. Text and Styles must be submitted to the
// document API together in one batch; the offsets are only meaningful once
// the text has been inserted at index 1.
type Rendered struct {
	Text   string
	Styles []StyleRange
}

// wblActivityLabels maps work-based learning activity types to readable
// labels. Unrecognized values pass through as raw text.
var wblActivityLabels = map[string]string{
	"internship":   "Internship",
	"job_shadow":   "Job Shadow",
	"mentorship":   "Mentorship",
	"volunteer":    "Volunteer Service",
	"school_based": "School-Based Enterprise",
}

// presentationFormatLabels maps presentation formats to readable labels.
var presentationFormatLabels = map[string]string{
	"slides": "Slide Presentation",
	"demo":   "Live Demonstration",
	"speech": "Speech",
	"panel":  "Panel Q&A",
}

// closingChecklist is the fixed checklist appended to every document.
var closingChecklist = []string{
	"Proposal approved by your CTE advisor",
	"Timeline reviewed with your mentor",
	"Work-based learning hours logged",
	"Deliverables collected in your portfolio",
	"Presentation scheduled and rehearsed",
	"Reflection written and submitted",
}

// Render walks the plan in a fixed, human-readable order and produces the
// text blob and style ranges in a single pass. Deterministic: the same plan
// always yields the same output.
func Render(plan *domain.CapstonePlanData) Rendered {
	e := &emitter{offset: 1}

	e.styledLine(orPlaceholder(plan.Title, "Untitled Capstone Project"), titleFontSizePt)
	e.blank()

	e.header("CTE Pathway Alignment")
	if plan.CTEPathway != "" {
		e.line("Pathway: " + plan.CTEPathway)
	} else {
		e.line("Pathway: " + placeholder)
	}
	e.blank()

	e.header("Project Proposal")
	e.proposal(plan.ProjectProposal)
	e.blank()

	e.header("Work-Based Learning")
	e.workBasedLearning(plan.WorkBasedLearning)
	e.blank()

	e.header("Objectives")
	e.bullets(plan.Objectives, "No objectives specified.")
	e.blank()

	e.header("Deliverables")
	e.bullets(plan.Deliverables, "No deliverables specified.")
	e.deliverablesDetail(plan.DeliverablesDetail)
	e.blank()

	e.header("Timeline")
	e.timeline(plan.Timeline)
	e.blank()

	e.header("Public Presentation")
	e.presentation(plan.Presentation)
	e.blank()

	e.header("Reflection & Postsecondary Connection")
	e.reflection(plan.Reflection)
	e.blank()

	e.header("Rubric")
	e.rubric(plan.Rubric)
	e.blank()

	e.header("Assessment")
	e.bullets(plan.Assessment, "No assessment criteria specified.")
	e.blank()

	e.header("Resources")
	e.bullets(plan.Resources, "No resources specified.")
	e.blank()

	e.header("Final Checklist")
	for _, item := range closingChecklist {
		e.line("☐ " + item)
	}

	return Rendered{Text: e.sb.String(), Styles: e.styles}
}

// emitter tracks the running insert offset while text is appended. The
// offset of a unit of text is recorded before the counter advances.
type emitter struct {
	sb     strings.Builder
	offset int64
	styles []StyleRange
}

// line appends one line of text including its trailing line break.
func (e *emitter) line(text string) {
	e.sb.WriteString(text)
	e.sb.WriteString("\n")
	e.offset += docLen(text) + 1
}

// styledLine appends a line and records a style range spanning exactly the
// emitted text, excluding the trailing line break.
func (e *emitter) styledLine(text string, fontSizePt float64) {
	start := e.offset
	e.line(text)
	e.styles = append(e.styles, StyleRange{
		Start:      start,
		End:        start + docLen(text),
		Bold:       true,
		FontSizePt: fontSizePt,
	})
}

// boldLine appends a line styled bold with no font-size change.
func (e *emitter) boldLine(text string) {
	start := e.offset
	e.line(text)
	e.styles = append(e.styles, StyleRange{
		Start: start,
		End:   start + docLen(text),
		Bold:  true,
	})
}

func (e *emitter) header(text string) {
	e.styledLine(text, headerFontSizePt)
}

func (e *emitter) blank() {
	e.line("")
}

// bullets emits one bullet per item, or a single placeholder line when the
// list is empty.
func (e *emitter) bullets(items []string, empty string) {
	if len(items) == 0 {
		e.line(empty)
		return
	}
	for _, item := range items {
		e.line("• " + item)
	}
}

func (e *emitter) timeline(phases []domain.TimelinePhase) {
	if len(phases) == 0 {
		e.line("No timeline specified.")
		return
	}
	for _, phase := range phases {
		weeks := phase.Weeks
		if weeks < 0 {
			weeks = 0
		}
		e.boldLine(fmt.Sprintf("%s (%d weeks)", phase.Phase, weeks))
		e.bullets(phase.Tasks, "No tasks specified.")
	}
}

func (e *emitter) proposal(p *domain.ProjectProposal) {
	if p == nil {
		e.line("Problem statement: " + placeholder)
		e.line("Summary: " + placeholder)
		e.line("Research sources: " + placeholder)
		return
	}
	if p.ProblemStatement != "" {
		e.line("Problem statement: " + p.ProblemStatement)
	}
	if p.Summary != "" {
		e.line("Summary: " + p.Summary)
	}
	if len(p.ResearchSources) > 0 {
		e.line("Research sources:")
		e.bullets(p.ResearchSources, "")
	}
	if p.ProblemStatement == "" && p.Summary == "" && len(p.ResearchSources) == 0 {
		e.line(placeholder)
	}
}

func (e *emitter) workBasedLearning(w *domain.WorkBasedLearning) {
	if w == nil {
		e.line("Activity: " + placeholder)
		e.line("Organization: " + placeholder)
		e.line("Supervisor: " + placeholder)
		e.line("Hours: " + placeholder)
		return
	}
	empty := true
	if w.ActivityType != "" {
		label := w.ActivityType
		if mapped, ok := wblActivityLabels[w.ActivityType]; ok {
			label = mapped
		}
		e.line("Activity: " + label)
		empty = false
	}
	if w.Organization != "" {
		e.line("Organization: " + w.Organization)
		empty = false
	}
	if w.Supervisor != "" {
		e.line("Supervisor: " + w.Supervisor)
		empty = false
	}
	if w.Hours != "" {
		e.line("Hours: " + w.Hours)
		empty = false
	}
	if w.Description != "" {
		e.line(w.Description)
		empty = false
	}
	if empty {
		e.line(placeholder)
	}
}

func (e *emitter) deliverablesDetail(d *domain.DeliverablesDetail) {
	if d == nil {
		return
	}
	if d.Product != "" {
		e.line("Final product: " + d.Product)
	}
	if len(d.PortfolioItems) > 0 {
		e.line("Portfolio items:")
		e.bullets(d.PortfolioItems, "")
	}
	if len(d.Evidence) > 0 {
		e.line("Evidence of learning:")
		e.bullets(d.Evidence, "")
	}
}

func (e *emitter) presentation(p *domain.Presentation) {
	if p == nil {
		e.line("Format: " + placeholder)
		e.line("Audience: " + placeholder)
		e.line("Date: " + placeholder)
		return
	}
	empty := true
	if p.Format != "" {
		label := p.Format
		if mapped, ok := presentationFormatLabels[p.Format]; ok {
			label = mapped
		}
		e.line("Format: " + label)
		empty = false
	}
	if p.Audience != "" {
		e.line("Audience: " + p.Audience)
		empty = false
	}
	if p.Date != "" {
		e.line("Date: " + p.Date)
		empty = false
	}
	if len(p.Materials) > 0 {
		e.line("Materials:")
		e.bullets(p.Materials, "")
		empty = false
	}
	if empty {
		e.line(placeholder)
	}
}

func (e *emitter) reflection(r *domain.Reflection) {
	if r == nil {
		e.line("Postsecondary goal: " + placeholder)
		e.line("Skills gained: " + placeholder)
		e.line("Career connection: " + placeholder)
		return
	}
	empty := true
	if r.PostsecondaryGoal != "" {
		e.line("Postsecondary goal: " + r.PostsecondaryGoal)
		empty = false
	}
	if len(r.SkillsGained) > 0 {
		e.line("Skills gained:")
		e.bullets(r.SkillsGained, "")
		empty = false
	}
	if r.CareerConnection != "" {
		e.line("Career connection: " + r.CareerConnection)
		empty = false
	}
	if empty {
		e.line(placeholder)
	}
}

func (e *emitter) rubric(r *domain.Rubric) {
	if r == nil {
		e.line("Scoring criteria: " + placeholder)
		return
	}
	empty := true
	if len(r.Criteria) > 0 {
		e.line("Scoring criteria:")
		e.bullets(r.Criteria, "")
		empty = false
	}
	if r.ScoringNotes != "" {
		e.line("Notes: " + r.ScoringNotes)
		empty = false
	}
	if empty {
		e.line("Scoring criteria: " + placeholder)
	}
}

// docLen returns the length of s in UTF-16 code units, which is how the
// Google Docs API measures index positions.
func docLen(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}

func orPlaceholder(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
