package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lifeos-app/lifeos/internal/models"
)

// ImportOptions selects the import mode and dry run. An empty mode means
// replace.
type ImportOptions struct {
	Mode   models.ImportMode
	DryRun bool
}

func (o ImportOptions) query() string {
	v := url.Values{}
	if o.Mode != "" {
		v.Set("mode", string(o.Mode))
	}

	if o.DryRun {
		v.Set("dry_run", "true")
	}

	if len(v) == 0 {
		return ""
	}

	return "?" + v.Encode()
}

// Export retrieves the caller's snapshot document.
func (c *Client) Export(ctx context.Context) (*models.Snapshot, error) {
	var doc models.Snapshot
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/export", nil, &doc); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	return &doc, nil
}

// ExportTo streams the export document to w byte for byte and returns the
// filename suggested by the server.
func (c *Client) ExportTo(ctx context.Context, w io.Writer) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/api/v1/export", "", nil)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("export: reading body: %w", err)
	}

	var filename string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}

	return filename, nil
}

// Import sends doc as the request body.
func (c *Client) Import(ctx context.Context, doc *models.Snapshot, opts ImportOptions) (*models.ImportResult, error) {
	var result models.ImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/import"+opts.query(), doc, &result); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	return &result, nil
}

// ImportFile uploads a document as multipart form data without decoding it
// locally, so files from newer clients reach the server unchanged.
func (c *Client) ImportFile(ctx context.Context, filename string, r io.Reader, opts ImportOptions) (*models.ImportResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if opts.Mode != "" {
		if err := mw.WriteField("mode", string(opts.Mode)); err != nil {
			return nil, fmt.Errorf("import file: %w", err)
		}
	}

	if err := mw.WriteField("dryRun", strconv.FormatBool(opts.DryRun)); err != nil {
		return nil, fmt.Errorf("import file: %w", err)
	}

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("import file: %w", err)
	}

	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("import file: reading %s: %w", filename, err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("import file: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/v1/import/file", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("import file: %w", err)
	}
	defer resp.Body.Close()

	var result models.ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("import file: decode response: %w", err)
	}

	return &result, nil
}

// Validate checks a raw document on the server without importing it.
func (c *Client) Validate(ctx context.Context, document []byte) (*models.ValidationReport, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/v1/import/validate", "application/json", bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	defer resp.Body.Close()

	var report models.ValidationReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("validate: decode response: %w", err)
	}

	return &report, nil
}
