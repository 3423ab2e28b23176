package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jdelaney/capstone-planner/internal/domain"
	"github.com/jdelaney/capstone-planner/internal/drive"
	"github.com/jdelaney/capstone-planner/internal/identity"
)

// stubExporter records the export call and returns a fixed result.
type stubExporter struct {
	result      *drive.ExportResult
	err         error
	gotPlan     *domain.CapstonePlanData
	gotStudent  string
	timesCalled int
}

func (s *stubExporter) CreatePlanDocument(_ context.Context, plan *domain.CapstonePlanData, studentName string) (*drive.ExportResult, error) {
	s.timesCalled++
	s.gotPlan = plan
	s.gotStudent = studentName
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func doCreateRequest(t *testing.T, h *CapstoneHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/capstone/create", bytes.NewReader(payload))
	req = req.WithContext(identity.ContextWithUserID(req.Context(), testUserID))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func usablePlanBody() map[string]any {
	return map[string]any{
		"capstonePlanData": domain.CapstonePlanData{
			Title:      "Community Garden App",
			CTEPathway: "Information Technology",
		},
	}
}

func TestCapstoneCreateRequiresUsablePlan(t *testing.T) {
	h := NewCapstoneHandler(NewHandler(newMemRepo(), testConfig()), &stubExporter{})

	cases := []map[string]any{
		{},
		{"capstonePlanData": map[string]string{"title": "only title"}},
		{"capstonePlanData": map[string]string{"ctePathway": "only pathway"}},
	}
	for _, body := range cases {
		rec := doCreateRequest(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCapstoneCreateRequiresGoogleCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Google.PrivateKey = ""
	exporter := &stubExporter{}
	h := NewCapstoneHandler(NewHandler(newMemRepo(), cfg), exporter)

	rec := doCreateRequest(t, h, usablePlanBody())

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if exporter.timesCalled != 0 {
		t.Error("exporter must not be called without credentials")
	}
}

func TestCapstoneCreateSuccess(t *testing.T) {
	repo := newMemRepo()
	repo.UpsertSession(context.Background(), &domain.PlanningSession{
		UserID:      testUserID,
		StudentName: "Sam",
		State:       domain.ConversationState{TurnCount: 5, Phase: domain.PhaseReview},
	})

	exporter := &stubExporter{result: &drive.ExportResult{
		FolderID:   "folder-1",
		FolderLink: "https://drive.google.com/drive/folders/folder-1",
		DocID:      "doc-1",
		DocLink:    "https://docs.google.com/document/d/doc-1/edit",
		DocName:    "Community Garden App - Project Plan",
	}}
	h := NewCapstoneHandler(NewHandler(repo, testConfig()), exporter)

	rec := doCreateRequest(t, h, usablePlanBody())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp capstoneCreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.FolderID != "folder-1" || resp.Doc.ID != "doc-1" {
		t.Errorf("unexpected response: %+v", resp)
	}

	// Student name falls back to the session when not supplied.
	if exporter.gotStudent != "Sam" {
		t.Errorf("expected student name from session, got %q", exporter.gotStudent)
	}

	// Export finalizes the session.
	sess, _ := repo.GetSession(context.Background(), testUserID)
	if sess.State.Phase != domain.PhaseComplete {
		t.Errorf("expected phase complete after export, got %s", sess.State.Phase)
	}
	if sess.Plan == nil || sess.Plan.Title != "Community Garden App" {
		t.Errorf("exported plan was not persisted: %+v", sess.Plan)
	}
}

func TestCapstoneCreateExplicitStudentNameWins(t *testing.T) {
	repo := newMemRepo()
	repo.UpsertSession(context.Background(), &domain.PlanningSession{
		UserID:      testUserID,
		StudentName: "Sam",
	})
	exporter := &stubExporter{result: &drive.ExportResult{}}
	h := NewCapstoneHandler(NewHandler(repo, testConfig()), exporter)

	body := usablePlanBody()
	body["studentName"] = "Alex"
	doCreateRequest(t, h, body)

	if exporter.gotStudent != "Alex" {
		t.Errorf("expected explicit student name, got %q", exporter.gotStudent)
	}
}

func TestCapstoneCreateExportFailure(t *testing.T) {
	repo := newMemRepo()
	repo.UpsertSession(context.Background(), &domain.PlanningSession{
		UserID: testUserID,
		State:  domain.ConversationState{TurnCount: 5, Phase: domain.PhaseReview},
	})
	exporter := &stubExporter{err: errors.New("drive: insufficient permissions")}
	h := NewCapstoneHandler(NewHandler(repo, testConfig()), exporter)

	rec := doCreateRequest(t, h, usablePlanBody())

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	body := decodeJSONBody(t, rec)
	if body["error"] != "failed to create capstone files" {
		t.Errorf("unexpected error: %v", body["error"])
	}

	// A failed export must not advance the session.
	sess, _ := repo.GetSession(context.Background(), testUserID)
	if sess.State.Phase != domain.PhaseReview {
		t.Errorf("phase must be unchanged after failure, got %s", sess.State.Phase)
	}
}
