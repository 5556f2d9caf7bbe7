package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/domain"
	"github.com/lifeos-app/lifeos/internal/middleware"
	"github.com/lifeos-app/lifeos/internal/models"
)

// PortabilityHandler serves export, import and validation endpoints.
type PortabilityHandler struct {
	exporter domain.ExportService
	importer domain.ImportService
	log      *logrus.Logger
	maxBytes int64
}

// NewPortabilityHandler creates a PortabilityHandler. maxBytes bounds
// uploaded documents.
func NewPortabilityHandler(exporter domain.ExportService, importer domain.ImportService, log *logrus.Logger, maxBytes int64) *PortabilityHandler {
	return &PortabilityHandler{exporter: exporter, importer: importer, log: log, maxBytes: maxBytes}
}

// Export handles GET /api/v1/export.
// Returns the caller's snapshot as a JSON file attachment.
func (h *PortabilityHandler) Export(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	doc, err := h.exporter.Export(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.log, "export", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(doc.Schema.ExportedAt)))

	middleware.RequestLog(c, h.log).WithFields(logrus.Fields{
		"action":   "export",
		"entities": doc.Meta.TotalEntities,
	}).Info("audit")

	c.JSON(http.StatusOK, doc)
}

// Import handles POST /api/v1/import.
//
// The body is either a bare snapshot, with mode and dry_run taken from the
// query string, or an import request {"mode","dryRun","data"}.
func (h *PortabilityHandler) Import(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBodyError(c, err)
		return
	}

	doc, opts, err := parseImportBody(body, c.Query("mode"), c.Query("dry_run"))
	if err != nil {
		respondBodyError(c, err)
		return
	}

	h.runImport(c, userID, doc, opts, "json")
}

// ImportFile handles POST /api/v1/import/file with a multipart upload: the
// document in the "file" part plus optional "mode" and "dryRun" fields.
func (h *PortabilityHandler) ImportFile(c *gin.Context) {
	userID := getUserID(c)
	if userID == "" {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondBodyError(c, err)
			return
		}

		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "multipart field \"file\" is required")

		return
	}

	if fh.Size > h.maxBytes {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
			fmt.Sprintf("document exceeds %d bytes", h.maxBytes))

		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "unreadable upload")
		return
	}
	defer f.Close()

	doc, err := decodeSnapshot(f)
	if err != nil {
		respondBodyError(c, err)
		return
	}

	dryRun := c.PostForm("dryRun")
	if dryRun == "" {
		dryRun = c.PostForm("dry_run")
	}

	opts, err := parseOptions(c.PostForm("mode"), dryRun)
	if err != nil {
		respondBodyError(c, err)
		return
	}

	h.runImport(c, userID, doc, opts, "file")
}

func (h *PortabilityHandler) runImport(c *gin.Context, userID string, doc *models.Snapshot, opts models.ImportOptions, source string) {
	result, err := h.importer.Import(c.Request.Context(), userID, doc, opts)
	if err != nil {
		respondServiceError(c, h.log, "import", err)
		return
	}

	middleware.RequestLog(c, h.log).WithFields(logrus.Fields{
		"action":   "import",
		"source":   source,
		"mode":     result.Mode,
		"dry_run":  result.IsDryRun,
		"imported": result.TotalImported,
		"skipped":  result.TotalSkipped,
		"errors":   result.TotalErrors,
	}).Info("audit")

	c.JSON(http.StatusOK, result)
}

// Validate handles POST /api/v1/import/validate.
// Reports schema compatibility, meta consistency and row problems without
// touching the database.
func (h *PortabilityHandler) Validate(c *gin.Context) {
	if getUserID(c) == "" {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBodyError(c, err)
		return
	}

	doc, _, err := parseImportBody(body, "", "")
	if err != nil {
		respondBodyError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.importer.Validate(doc))
}

// parseImportBody accepts a bare snapshot or an import request envelope.
// Envelope fields win over the query values.
func parseImportBody(body []byte, queryMode, queryDryRun string) (*models.Snapshot, models.ImportOptions, error) {
	var envelope struct {
		Schema json.RawMessage `json:"schema"`
		Data   json.RawMessage `json:"data"`
		Mode   *string         `json:"mode"`
		DryRun *bool           `json:"dryRun"`
	}

	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, models.ImportOptions{}, fmt.Errorf("decoding document: %w", err)
	}

	if envelope.Schema == nil && envelope.Data == nil {
		return nil, models.ImportOptions{}, errors.New("expected a snapshot document or an import request")
	}

	opts, err := parseOptions(queryMode, queryDryRun)
	if err != nil {
		return nil, models.ImportOptions{}, err
	}

	if envelope.Schema != nil {
		doc, err := decodeSnapshot(bytes.NewReader(body))
		return doc, opts, err
	}

	var req models.ImportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, models.ImportOptions{}, fmt.Errorf("decoding import request: %w", err)
	}

	if envelope.Mode != nil {
		opts.Mode = models.ImportMode(req.Mode)
	}

	if envelope.DryRun != nil {
		opts.DryRun = req.DryRun
	}

	return &req.Data, opts, nil
}

func decodeSnapshot(r io.Reader) (*models.Snapshot, error) {
	var doc models.Snapshot
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return &doc, nil
}

// parseOptions leaves mode validation to the importer so every entry point
// reports an invalid mode the same way.
func parseOptions(mode, dryRun string) (models.ImportOptions, error) {
	opts := models.ImportOptions{Mode: models.ImportMode(mode)}

	if dryRun != "" {
		v, err := strconv.ParseBool(dryRun)
		if err != nil {
			return opts, fmt.Errorf("dry_run must be true or false, got %q", dryRun)
		}

		opts.DryRun = v
	}

	return opts, nil
}

func exportFilename(t time.Time) string {
	return fmt.Sprintf("lifeos-export-%s.json", t.UTC().Format("20060102T150405Z"))
}
