package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lifeos-app/lifeos/internal/models"
)

// newTestServer creates a test server that routes to the given handler map.
// Keys are "METHOD /path", values are handler funcs.
func newTestServer(t *testing.T, routes map[string]http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer test-key" {
				jsonResponse(w, http.StatusUnauthorized, APIError{Code: "unauthorized", Message: "invalid api key"})
				return
			}
			handler(w, r)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", WithAPIKey("test-key"))
}

func jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func testDoc() *models.Snapshot {
	return models.NewSnapshot(models.SnapshotData{
		Dimensions: []models.Dimension{{ID: "d1", Code: "health", Name: "Health"}},
	}, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC))
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/health": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, HealthResponse{Status: "ok", Version: "1.2.0"})
		},
	})

	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error: %v", err)
	}

	if resp.Status != "ok" || resp.Version != "1.2.0" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestReady_NotReadyIsNotAnError(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/ready": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, http.StatusServiceUnavailable, ReadyResponse{
				Status: "not_ready",
				Checks: map[string]string{"database": "ok", "schema": "pending_migrations"},
			})
		},
	})

	resp, err := c.Ready(context.Background())
	if err != nil {
		t.Fatalf("Ready() error: %v", err)
	}

	if resp.Ready() || resp.Checks["schema"] != "pending_migrations" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestExport(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/export": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Disposition", `attachment; filename="lifeos-export-20250301T083000Z.json"`)
			jsonResponse(w, 200, testDoc())
		},
	})

	doc, err := c.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if len(doc.Data.Dimensions) != 1 || doc.Meta.TotalEntities != 1 {
		t.Errorf("unexpected document %+v", doc.Meta)
	}

	var buf bytes.Buffer

	name, err := c.ExportTo(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportTo() error: %v", err)
	}

	if name != "lifeos-export-20250301T083000Z.json" {
		t.Errorf("unexpected filename %q", name)
	}

	if !json.Valid(buf.Bytes()) {
		t.Error("expected raw JSON document")
	}
}

func TestImport_SendsOptions(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/import": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("mode") != "merge" || r.URL.Query().Get("dry_run") != "true" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}

			var doc models.Snapshot
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				t.Errorf("decoding body: %v", err)
			}

			jsonResponse(w, 200, models.ImportResult{
				Status:        models.StatusDryRunComplete,
				Mode:          models.ModeMerge,
				IsDryRun:      true,
				TotalImported: len(doc.Data.Dimensions),
			})
		},
	})

	result, err := c.Import(context.Background(), testDoc(), ImportOptions{Mode: models.ModeMerge, DryRun: true})
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if result.Status != models.StatusDryRunComplete || result.TotalImported != 1 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestImportFile_Multipart(t *testing.T) {
	raw, err := json.Marshal(testDoc())
	if err != nil {
		t.Fatal(err)
	}

	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/import/file": func(w http.ResponseWriter, r *http.Request) {
			if r.FormValue("mode") != "replace" || r.FormValue("dryRun") != "false" {
				t.Errorf("unexpected form mode=%q dryRun=%q", r.FormValue("mode"), r.FormValue("dryRun"))
			}

			f, fh, err := r.FormFile("file")
			if err != nil {
				t.Errorf("missing file part: %v", err)
				return
			}
			defer f.Close()

			got, _ := io.ReadAll(f) //nolint:errcheck
			if !bytes.Equal(got, raw) || fh.Filename != "backup.json" {
				t.Errorf("file part mismatch: %s %q", fh.Filename, got)
			}

			jsonResponse(w, 200, models.ImportResult{Status: models.StatusSuccess, Mode: models.ModeReplace})
		},
	})

	result, err := c.ImportFile(context.Background(), "backup.json", bytes.NewReader(raw), ImportOptions{Mode: models.ModeReplace})
	if err != nil {
		t.Fatalf("ImportFile() error: %v", err)
	}

	if result.Status != models.StatusSuccess {
		t.Errorf("unexpected status %q", result.Status)
	}
}

func TestValidate(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/import/validate": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, models.ValidationReport{
				SchemaVersion: "2.0.0",
				Problems:      []string{"incompatible schema version"},
			})
		},
	})

	report, err := c.Validate(context.Background(), []byte(`{"schema":{"version":"2.0.0"}}`))
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	if report.Valid || len(report.Problems) != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestAPIErrors(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/import": func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("mode") {
			case "merge":
				jsonResponse(w, http.StatusUnprocessableEntity, APIError{Code: "incompatible_schema", Message: "incompatible schema version"})
			default:
				jsonResponse(w, http.StatusInternalServerError, APIError{
					Code:      "checkpoint_failed",
					Message:   `import failed at checkpoint "records"`,
					RequestID: "req-1",
				})
			}
		},
		"GET /api/v1/export": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down")) //nolint:errcheck
		},
	})

	ctx := context.Background()

	_, err := c.Import(ctx, testDoc(), ImportOptions{Mode: models.ModeMerge})
	if !IsIncompatibleSchema(err) {
		t.Errorf("expected incompatible schema error, got %v", err)
	}

	_, err = c.Import(ctx, testDoc(), ImportOptions{})
	if !IsCheckpointFailure(err) {
		t.Errorf("expected checkpoint failure, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.RequestID != "req-1" {
		t.Errorf("expected request ID in error, got %v", err)
	}

	_, err = c.Export(ctx)
	if !errors.As(err, &apiErr) || apiErr.Code != "unknown" || apiErr.Message != "upstream down" {
		t.Errorf("expected raw text fallback, got %v", err)
	}
}

func TestUnauthorized(t *testing.T) {
	c := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/export": func(w http.ResponseWriter, _ *http.Request) {
			jsonResponse(w, 200, testDoc())
		},
	})
	c.apiKey = "wrong"

	if _, err := c.Export(context.Background()); !IsUnauthorized(err) {
		t.Errorf("expected unauthorized, got %v", err)
	}
}
