package ops

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"scribe/internal/config"
	"scribe/internal/errors"
)

// ExportFormat selects the export artifact.
type ExportFormat string

const (
	FormatCSV      ExportFormat = "csv"
	FormatJSON     ExportFormat = "json"
	FormatMarkdown ExportFormat = "markdown"
	// FormatArchive bundles csv, json and markdown plus a README into one zip.
	FormatArchive ExportFormat = "archive"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Library string
	Format  ExportFormat // default: archive
	Dir     string       // default: <base>/exports
	BaseDir string       // scribe data dir; required for the default Dir
	Now     time.Time    // zero means time.Now()
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path        string        `json:"path"`
	Format      ExportFormat  `json:"format"`
	GroupCount  int           `json:"group_count"`
	GeneratedAt int64         `json:"generated_at"`
	Report      *ReportOutput `json:"-"`
}

// Export builds the duplicate report and writes it to disk in the requested
// format. The report is computed before any file I/O, and files are written
// via temp-file-plus-rename, so a failed export leaves no partial artifact
// and never touches stored records.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	format := input.Format
	if format == "" {
		format = FormatArchive
	}
	switch format {
	case FormatCSV, FormatJSON, FormatMarkdown, FormatArchive:
	default:
		return nil, errors.NewInvalidRequest("format must be one of: csv, json, markdown, archive")
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	report, err := Report(ctx, database, ReportInput{Library: input.Library, Now: now})
	if err != nil {
		return nil, err
	}

	defaultDir := filepath.Join(input.BaseDir, "exports")
	dir, err := ValidateExportDir(input.Dir, defaultDir, cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewExportFailed(string(format), err)
	}

	// Generation timestamp in the name keeps successive exports distinct.
	stamp := now.UTC().Format("2006-01-02T150405")
	name := fmt.Sprintf("scribe-report-%s-%s.%s", report.Library, stamp, fileExt(format))
	path := filepath.Join(dir, name)

	data, err := renderFormat(report, format)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(path, data); err != nil {
		return nil, errors.NewExportFailed(string(format), err)
	}

	if err := recordActivity(ctx, database, report.Library, "export", name, report.Summary.GroupCount); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:        path,
		Format:      format,
		GroupCount:  report.Summary.GroupCount,
		GeneratedAt: report.GeneratedAt,
		Report:      report,
	}, nil
}

func fileExt(format ExportFormat) string {
	switch format {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "md"
	default:
		return "zip"
	}
}

func renderFormat(report *ReportOutput, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatCSV:
		return renderCSV(report)
	case FormatJSON:
		return renderJSON(report)
	case FormatMarkdown:
		return renderMarkdown(report), nil
	default:
		return renderArchive(report)
	}
}

// renderArchive builds the zip bundle: csv + json + markdown + README.
func renderArchive(report *ReportOutput) ([]byte, error) {
	csvData, err := renderCSV(report)
	if err != nil {
		return nil, err
	}
	jsonData, err := renderJSON(report)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	files := []struct {
		name string
		data []byte
	}{
		{"report.csv", csvData},
		{"report.json", jsonData},
		{"report.md", renderMarkdown(report)},
		{"README.txt", archiveReadme(report)},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, errors.NewExportFailed("archive", err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, errors.NewExportFailed("archive", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.NewExportFailed("archive", err)
	}
	return buf.Bytes(), nil
}

// writeAtomic writes data to path via a temp file and rename, preserving any
// existing file on failure.
func writeAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return err
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
