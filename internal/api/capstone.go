package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jdelaney/capstone-planner/internal/domain"
	"github.com/jdelaney/capstone-planner/internal/drive"
	"github.com/jdelaney/capstone-planner/internal/identity"
)

// PlanExporter is the document-creation collaborator boundary.
type PlanExporter interface {
	CreatePlanDocument(ctx context.Context, plan *domain.CapstonePlanData, studentName string) (*drive.ExportResult, error)
}

// CapstoneHandler handles the Drive export endpoint.
type CapstoneHandler struct {
	*Handler
	exporter PlanExporter
}

// NewCapstoneHandler creates a new capstone export handler.
func NewCapstoneHandler(base *Handler, exporter PlanExporter) *CapstoneHandler {
	return &CapstoneHandler{Handler: base, exporter: exporter}
}

// RegisterRoutes registers the capstone export routes.
func (h *CapstoneHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/capstone/create", h.Create)
}

type capstoneCreateRequest struct {
	CapstonePlanData *domain.CapstonePlanData `json:"capstonePlanData"`
	StudentName      string                   `json:"studentName"`
}

type capstoneCreateResponse struct {
	Success    bool              `json:"success"`
	FolderID   string            `json:"folderId"`
	FolderLink string            `json:"folderLink"`
	Doc        capstoneCreateDoc `json:"doc"`
}

type capstoneCreateDoc struct {
	ID   string `json:"id"`
	Link string `json:"link"`
	Name string `json:"name"`
}

// Create exports the plan as a formatted Google Doc in a new Drive folder.
// A failure partway through leaves whatever was created in place; retrying
// creates a fresh folder rather than reusing the partial one.
func (h *CapstoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req capstoneCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if !req.CapstonePlanData.Usable() {
		Error(w, http.StatusBadRequest, "a plan with title and ctePathway is required")
		return
	}

	if !h.cfg.Google.Configured() {
		Error(w, http.StatusInternalServerError, "missing Google service account credentials (GOOGLE_CLIENT_EMAIL/GOOGLE_PRIVATE_KEY)")
		return
	}

	studentName := req.StudentName
	if studentName == "" {
		if sess, err := h.repo.GetSession(r.Context(), userID); err == nil && sess != nil {
			studentName = sess.StudentName
		}
	}

	result, err := h.exporter.CreatePlanDocument(r.Context(), req.CapstonePlanData, studentName)
	if err != nil {
		slog.Error("capstone export failed", "user_id", userID, "error", err)
		ErrorWithDetails(w, http.StatusBadGateway, "failed to create capstone files", err.Error())
		return
	}

	// Export finalizes the session.
	if sess, err := h.repo.GetSession(r.Context(), userID); err == nil && sess != nil {
		sess.State.Phase = domain.PhaseComplete
		sess.Plan = req.CapstonePlanData
		sess.UpdatedAt = time.Now()
		if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
			slog.Warn("failed to mark session complete", "user_id", userID, "error", err)
		}
	}

	JSON(w, http.StatusOK, capstoneCreateResponse{
		Success:    true,
		FolderID:   result.FolderID,
		FolderLink: result.FolderLink,
		Doc: capstoneCreateDoc{
			ID:   result.DocID,
			Link: result.DocLink,
			Name: result.DocName,
		},
	})
}
