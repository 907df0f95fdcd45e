package ops

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/config"
	"scribe/internal/errors"
)

func TestExport_CSV(t *testing.T) {
	database := newTestDB(t)
	tmpDir := t.TempDir()
	ctx := context.Background()

	seedDuplicateSet(t, database, "01CSV", "default", "abc1", []int{30, 20, 1})

	out, err := Export(ctx, database, config.DefaultConfig(), ExportInput{
		Library: "default",
		Format:  FormatCSV,
		BaseDir: tmpDir,
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	if !strings.HasSuffix(out.Path, ".csv") {
		t.Errorf("Path = %q, want .csv suffix", out.Path)
	}
	if out.GroupCount != 1 {
		t.Errorf("GroupCount = %d, want 1", out.GroupCount)
	}

	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 group", len(lines))
	}
	if !strings.HasPrefix(lines[0], "title,checksum,version_count") {
		t.Errorf("unexpected csv header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "abc1") {
		t.Errorf("group row missing checksum: %q", lines[1])
	}
}

func TestExport_JSONShape(t *testing.T) {
	database := newTestDB(t)
	tmpDir := t.TempDir()
	ctx := context.Background()

	seedDuplicateSet(t, database, "01JSN", "default", "def2", []int{30, 1})

	out, err := Export(ctx, database, config.DefaultConfig(), ExportInput{
		Library: "default",
		Format:  FormatJSON,
		BaseDir: tmpDir,
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded["library"] != "default" {
		t.Errorf("library = %v, want default", decoded["library"])
	}
	groups, ok := decoded["duplicate_groups"].([]any)
	if !ok {
		t.Fatalf("duplicate_groups missing or not an array: %T", decoded["duplicate_groups"])
	}
	if len(groups) != 1 {
		t.Errorf("duplicate_groups length = %d, want 1", len(groups))
	}
	if _, ok := decoded["summary"]; !ok {
		t.Error("summary object missing from JSON export")
	}
}

func TestExport_Archive(t *testing.T) {
	database := newTestDB(t)
	tmpDir := t.TempDir()
	ctx := context.Background()

	seedDuplicateSet(t, database, "01ZIP", "default", "ghi3", []int{30, 20, 10, 1})

	out, err := Export(ctx, database, config.DefaultConfig(), ExportInput{
		Library: "default",
		BaseDir: tmpDir, // archive is the default format
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Format != FormatArchive {
		t.Errorf("Format = %q, want archive", out.Format)
	}

	zr, err := zip.OpenReader(out.Path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"report.csv", "report.json", "report.md", "README.txt"} {
		if !names[want] {
			t.Errorf("archive missing %s (have %v)", want, names)
		}
	}
}

func TestExport_DefaultDirAndName(t *testing.T) {
	database := newTestDB(t)
	tmpDir := t.TempDir()
	ctx := context.Background()

	out, err := Export(ctx, database, config.DefaultConfig(), ExportInput{
		Library: "default",
		Format:  FormatMarkdown,
		BaseDir: tmpDir,
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	wantDir := filepath.Join(tmpDir, "exports")
	if filepath.Dir(out.Path) != wantDir {
		t.Errorf("export dir = %q, want %q", filepath.Dir(out.Path), wantDir)
	}
	base := filepath.Base(out.Path)
	if !strings.HasPrefix(base, "scribe-report-default-") || !strings.HasSuffix(base, ".md") {
		t.Errorf("unexpected export name %q", base)
	}
}

func TestExport_RejectsUnknownFormat(t *testing.T) {
	database := newTestDB(t)

	_, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{
		Library: "default",
		Format:  ExportFormat("xml"),
		BaseDir: t.TempDir(),
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for unknown format, got %v", err)
	}
}

func TestExport_RejectsOutsideDir(t *testing.T) {
	database := newTestDB(t)
	tmpDir := t.TempDir()

	_, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{
		Library: "default",
		Format:  FormatCSV,
		BaseDir: tmpDir,
		Dir:     filepath.Join(t.TempDir(), "elsewhere"),
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST for disallowed dir, got %v", err)
	}
}

func TestExport_AllowedPathOverride(t *testing.T) {
	database := newTestDB(t)
	tmpDir := t.TempDir()
	other := filepath.Join(t.TempDir(), "reports")

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{other}

	out, err := Export(context.Background(), database, cfg, ExportInput{
		Library: "default",
		Format:  FormatCSV,
		BaseDir: tmpDir,
		Dir:     other,
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Export to allowed path failed: %v", err)
	}
	if filepath.Dir(out.Path) != other {
		t.Errorf("export dir = %q, want %q", filepath.Dir(out.Path), other)
	}
}

func TestExport_EmptyLibraryStillProducesReport(t *testing.T) {
	database := newTestDB(t)

	out, err := Export(context.Background(), database, config.DefaultConfig(), ExportInput{
		Library: "default",
		Format:  FormatMarkdown,
		BaseDir: t.TempDir(),
		Now:     testNow,
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "No duplicate groups found") {
		t.Error("empty-library markdown should state there is nothing to do")
	}
}
