// Package drive exports a rendered capstone plan to Google Drive: a new
// folder containing a formatted Google Doc, created via a service account.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/jdelaney/capstone-planner/internal/docformat"
	"github.com/jdelaney/capstone-planner/internal/domain"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Credentials holds the service account identity used for Drive and Docs.
type Credentials struct {
	ClientEmail string
	PrivateKey  string
}

// Configured reports whether both credential parts are present.
func (c Credentials) Configured() bool {
	return c.ClientEmail != "" && c.PrivateKey != ""
}

// ExportResult describes the created folder and document.
type ExportResult struct {
	FolderID   string `json:"folderId"`
	FolderLink string `json:"folderLink"`
	DocID      string `json:"docId"`
	DocLink    string `json:"docLink"`
	DocName    string `json:"docName"`
}

// Exporter creates plan documents in Google Drive. Creation is not
// idempotent: retrying after a partial failure creates a new folder rather
// than reusing a prior one. A folder left behind with no document inside is
// an accepted intermediate state.
type Exporter struct {
	creds  Credentials
	opts   []option.ClientOption
	logger *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithClientOptions appends Google API client options, used by tests to
// point the exporter at a fake endpoint.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(e *Exporter) {
		e.opts = append(e.opts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// NewExporter creates an Exporter with the given service account credentials.
func NewExporter(creds Credentials, opts ...Option) *Exporter {
	e := &Exporter{
		creds:  creds,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// clientOptions builds the Google API options, deriving a JWT token source
// from the service account unless the caller injected its own transport.
func (e *Exporter) clientOptions(ctx context.Context) ([]option.ClientOption, error) {
	if len(e.opts) > 0 {
		return e.opts, nil
	}

	// Private keys arrive from env config with literal \n sequences.
	key := strings.ReplaceAll(e.creds.PrivateKey, `\n`, "\n")

	conf := &jwt.Config{
		Email:      e.creds.ClientEmail,
		PrivateKey: []byte(key),
		TokenURL:   google.JWTTokenURL,
		Scopes: []string{
			driveapi.DriveFileScope,
			docs.DocumentsScope,
		},
	}
	return []option.ClientOption{option.WithTokenSource(conf.TokenSource(ctx))}, nil
}

// CreatePlanDocument creates the Drive folder, the Google Doc inside it,
// and submits the formatter's batch in one request. Any step failing aborts
// the whole export and surfaces a single aggregate error; no cleanup of a
// partially created folder is attempted.
func (e *Exporter) CreatePlanDocument(ctx context.Context, plan *domain.CapstonePlanData, studentName string) (*ExportResult, error) {
	clientOpts, err := e.clientOptions(ctx)
	if err != nil {
		return nil, err
	}

	driveSvc, err := driveapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init drive service: %w", err)
	}
	docsSvc, err := docs.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("init docs service: %w", err)
	}

	if studentName == "" {
		studentName = "Student"
	}
	folderName := "CTE Capstone – " + studentName

	folder, err := driveSvc.Files.Create(&driveapi.File{
		Name:     folderName,
		MimeType: folderMimeType,
	}).Fields("id", "name", "webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	if folder.Id == "" {
		return nil, fmt.Errorf("create folder: empty folder id")
	}

	docName := plan.Title + " - Project Plan"
	doc, err := docsSvc.Documents.Create(&docs.Document{
		Title: docName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	if doc.DocumentId == "" {
		return nil, fmt.Errorf("create document: empty document id")
	}

	_, err = driveSvc.Files.Update(doc.DocumentId, nil).AddParents(folder.Id).Fields("id").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("move document into folder: %w", err)
	}

	// Text and style ranges go up in one atomic batch; intermediate states
	// would have mismatched offsets.
	rendered := docformat.Render(plan)
	_, err = docsSvc.Documents.BatchUpdate(doc.DocumentId, &docs.BatchUpdateDocumentRequest{
		Requests: docformat.BatchRequests(rendered),
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("write document content: %w", err)
	}

	docLink := "https://docs.google.com/document/d/" + doc.DocumentId + "/edit"
	if f, err := driveSvc.Files.Get(doc.DocumentId).Fields("webViewLink").Context(ctx).Do(); err == nil && f.WebViewLink != "" {
		docLink = f.WebViewLink
	}

	folderLink := folder.WebViewLink
	if folderLink == "" {
		folderLink = "https://drive.google.com/drive/folders/" + folder.Id
	}

	e.logger.Info("capstone document created",
		"folder_id", folder.Id,
		"doc_id", doc.DocumentId,
		"style_ranges", len(rendered.Styles))

	return &ExportResult{
		FolderID:   folder.Id,
		FolderLink: folderLink,
		DocID:      doc.DocumentId,
		DocLink:    docLink,
		DocName:    docName,
	}, nil
}
