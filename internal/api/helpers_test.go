package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/middleware"
	"github.com/lifeos-app/lifeos/internal/models"
)

const testUserID = "00000000-0000-4000-8000-000000000001"

const minimalSnapshot = `{
	"schema": {"version": "1.0.0", "generator": "LifeOS", "exportedAt": "2025-03-01T08:30:00Z"},
	"data": {},
	"meta": {"totalEntities": 0, "entityCounts": {}}
}`

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// newTestRouter creates a gin engine that marks every request as testUserID.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, testUserID)
		c.Next()
	})

	return r
}

// doRequest performs an HTTP request against the test router and returns the recorder.
func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type fakeExporter struct {
	doc *models.Snapshot
	err error
}

func (f *fakeExporter) Export(_ context.Context, _ string) (*models.Snapshot, error) {
	return f.doc, f.err
}

type fakeImporter struct {
	mu      sync.Mutex
	err     error
	gotUser string
	gotDoc  *models.Snapshot
	gotOpts models.ImportOptions
	calls   int
}

func (f *fakeImporter) Import(_ context.Context, userID string, doc *models.Snapshot, opts models.ImportOptions) (*models.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.gotUser, f.gotDoc, f.gotOpts = userID, doc, opts

	if f.err != nil {
		return nil, f.err
	}

	status := models.StatusSuccess
	if opts.DryRun {
		status = models.StatusDryRunComplete
	}

	return &models.ImportResult{
		Status:        status,
		Mode:          opts.Mode,
		SchemaVersion: doc.Schema.Version,
		IsDryRun:      opts.DryRun,
	}, nil
}

func (f *fakeImporter) Validate(doc *models.Snapshot) *models.ValidationReport {
	return &models.ValidationReport{Valid: true, Compatible: true, SchemaVersion: doc.Schema.Version}
}

type fakeLookup struct{}

func (fakeLookup) GetUserByAPIKey(_ context.Context, apiKey string) (string, error) {
	if apiKey == "good-key" {
		return testUserID, nil
	}

	return "", models.ErrUserNotFound
}
