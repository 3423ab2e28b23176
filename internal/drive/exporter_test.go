package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/jdelaney/capstone-planner/internal/domain"
)

// fakeGoogle serves just enough of the Drive v3 and Docs v1 surfaces for an
// export round trip, recording what was called.
type fakeGoogle struct {
	t            *testing.T
	folderName   string
	docTitle     string
	addedParents string
	batch        *docs.BatchUpdateDocumentRequest
}

func (f *fakeGoogle) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files"):
			var file struct {
				Name     string `json:"name"`
				MimeType string `json:"mimeType"`
			}
			json.NewDecoder(r.Body).Decode(&file)
			f.folderName = file.Name
			json.NewEncoder(w).Encode(map[string]string{
				"id":          "folder-123",
				"name":        file.Name,
				"webViewLink": "https://drive.google.com/drive/folders/folder-123",
			})
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/v1/documents"):
			var doc struct {
				Title string `json:"title"`
			}
			json.NewDecoder(r.Body).Decode(&doc)
			f.docTitle = doc.Title
			json.NewEncoder(w).Encode(map[string]string{"documentId": "doc-456", "title": doc.Title})
		case r.Method == http.MethodPatch && strings.Contains(r.URL.Path, "/files/doc-456"):
			f.addedParents = r.URL.Query().Get("addParents")
			json.NewEncoder(w).Encode(map[string]string{"id": "doc-456"})
		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, ":batchUpdate"):
			var req docs.BatchUpdateDocumentRequest
			json.NewDecoder(r.Body).Decode(&req)
			f.batch = &req
			json.NewEncoder(w).Encode(map[string]string{"documentId": "doc-456"})
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/files/doc-456"):
			json.NewEncoder(w).Encode(map[string]string{
				"webViewLink": "https://docs.google.com/document/d/doc-456/edit",
			})
		default:
			f.t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestCreatePlanDocument(t *testing.T) {
	fake := &fakeGoogle{t: t}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	exporter := NewExporter(Credentials{}, WithClientOptions(
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	))

	plan := &domain.CapstonePlanData{
		Title:      "Bridge Stress Testing",
		CTEPathway: "STEM",
		Timeline:   []domain.TimelinePhase{{Phase: "Build", Weeks: 3, Tasks: []string{"Construct model"}}},
	}

	result, err := exporter.CreatePlanDocument(context.Background(), plan, "Riley")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if result.FolderID != "folder-123" || result.DocID != "doc-456" {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.DocName != "Bridge Stress Testing - Project Plan" {
		t.Errorf("doc name = %q", result.DocName)
	}
	if fake.folderName != "CTE Capstone – Riley" {
		t.Errorf("folder name = %q", fake.folderName)
	}
	if fake.docTitle != "Bridge Stress Testing - Project Plan" {
		t.Errorf("doc title = %q", fake.docTitle)
	}
	if fake.addedParents != "folder-123" {
		t.Errorf("document not moved into folder, addParents = %q", fake.addedParents)
	}

	// The batch must lead with the text insert, then style updates.
	if fake.batch == nil || len(fake.batch.Requests) < 2 {
		t.Fatalf("batch not submitted: %+v", fake.batch)
	}
	first := fake.batch.Requests[0]
	if first.InsertText == nil || !strings.Contains(first.InsertText.Text, "Bridge Stress Testing") {
		t.Errorf("first batch request must insert the rendered text")
	}
	for i, req := range fake.batch.Requests[1:] {
		if req.UpdateTextStyle == nil {
			t.Errorf("batch request %d should be a style update", i+1)
		}
	}
}

func TestCreatePlanDocumentDefaultStudentName(t *testing.T) {
	fake := &fakeGoogle{t: t}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	exporter := NewExporter(Credentials{}, WithClientOptions(
		option.WithEndpoint(server.URL),
		option.WithoutAuthentication(),
	))

	_, err := exporter.CreatePlanDocument(context.Background(),
		&domain.CapstonePlanData{Title: "T", CTEPathway: "P"}, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if fake.folderName != "CTE Capstone – Student" {
		t.Errorf("folder name = %q", fake.folderName)
	}
}

func TestCredentialsConfigured(t *testing.T) {
	if (Credentials{}).Configured() {
		t.Error("empty credentials should not be configured")
	}
	if (Credentials{ClientEmail: "a@b"}).Configured() {
		t.Error("email alone is not enough")
	}
	if !(Credentials{ClientEmail: "a@b", PrivateKey: "k"}).Configured() {
		t.Error("both parts should be configured")
	}
}
