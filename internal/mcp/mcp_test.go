package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"scribe/internal/config"
	"scribe/internal/db"
	"scribe/internal/event"
)

// testSetup creates a temporary database and handlers for testing.
func testSetup(t *testing.T) (*Handlers, *sql.DB) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true // allow temp dirs in tests

	return NewHandlers(database, cfg, event.NewBus(), tmpDir), database
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultPayload decodes the text content of a tool result.
func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", result.Content[0])
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	return payload
}

// addTranscript calls the add handler and returns the new ID.
func addTranscript(t *testing.T, h *Handlers, title string) string {
	t.Helper()
	result, err := h.HandleAdd(context.Background(), makeRequest(map[string]any{
		"title": title,
	}))
	if err != nil {
		t.Fatalf("HandleAdd error: %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleAdd returned error result: %v", result.Content)
	}
	payload := resultPayload(t, result)
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("add result missing id")
	}
	return id
}

func completeTranscript(t *testing.T, h *Handlers, id, text string) {
	t.Helper()
	result, err := h.HandleComplete(context.Background(), makeRequest(map[string]any{
		"id":   id,
		"text": text,
	}))
	if err != nil {
		t.Fatalf("HandleComplete error: %v", err)
	}
	if result.IsError {
		t.Fatalf("HandleComplete returned error result: %v", result.Content)
	}
}

func TestHandleAdd_Validation(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleAdd(context.Background(), makeRequest(map[string]any{
		"title": "   ",
	}))
	if err != nil {
		t.Fatalf("HandleAdd error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for blank title")
	}
	payload := resultPayload(t, result)
	errObj, _ := payload["error"].(map[string]any)
	if errObj["code"] != "INVALID_REQUEST" {
		t.Errorf("error code = %v, want INVALID_REQUEST", errObj["code"])
	}
}

func TestHandleList_MalformedArguments(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleList(context.Background(), makeRequest(map[string]any{
		"limit": "twenty",
	}))
	if err != nil {
		t.Fatalf("HandleList error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for a non-numeric limit")
	}
	payload := resultPayload(t, result)
	errObj, _ := payload["error"].(map[string]any)
	if errObj["code"] != "INVALID_REQUEST" {
		t.Errorf("error code = %v, want INVALID_REQUEST", errObj["code"])
	}
}

func TestHandleFetch_RoundTrip(t *testing.T) {
	h, _ := testSetup(t)
	id := addTranscript(t, h, "Standup notes")
	completeTranscript(t, h, id, "today we shipped the thing")

	result, err := h.HandleFetch(context.Background(), makeRequest(map[string]any{
		"id": id,
	}))
	if err != nil {
		t.Fatalf("HandleFetch error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}

	payload := resultPayload(t, result)
	if payload["title"] != "Standup notes" {
		t.Errorf("title = %v", payload["title"])
	}
	if payload["text"] != "today we shipped the thing" {
		t.Errorf("text = %v", payload["text"])
	}
	if payload["status"] != "completed" {
		t.Errorf("status = %v", payload["status"])
	}
}

func TestHandleFetch_NotFound(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandleFetch(context.Background(), makeRequest(map[string]any{
		"id": "01MISSING",
	}))
	if err != nil {
		t.Fatalf("HandleFetch error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown id")
	}
	payload := resultPayload(t, result)
	errObj, _ := payload["error"].(map[string]any)
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error code = %v, want NOT_FOUND", errObj["code"])
	}
}

func TestHandleDuplicatesAndCleanup(t *testing.T) {
	h, _ := testSetup(t)

	for _, title := range []string{"Copy A", "Copy B", "Copy C"} {
		id := addTranscript(t, h, title)
		completeTranscript(t, h, id, "the same recording transcribed thrice")
	}

	dup, err := h.HandleDuplicates(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleDuplicates error: %v", err)
	}
	payload := resultPayload(t, dup)
	groups, _ := payload["groups"].([]any)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}

	// Fresh records: nothing is old enough to delete under the defaults.
	preview, err := h.HandleCleanupPreview(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleCleanupPreview error: %v", err)
	}
	previewPayload := resultPayload(t, preview)
	if previewPayload["dry_run"] != true {
		t.Error("dry_run should be true")
	}
	summary, _ := previewPayload["summary"].(map[string]any)
	if summary["deletable_count"] != float64(0) {
		t.Errorf("deletable_count = %v, want 0 for fresh records", summary["deletable_count"])
	}

	apply, err := h.HandleCleanupApply(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleCleanupApply error: %v", err)
	}
	applyPayload := resultPayload(t, apply)
	if applyPayload["deleted"] != float64(0) {
		t.Errorf("deleted = %v, want 0", applyPayload["deleted"])
	}
}

func TestHandlePolicySaveAndGet(t *testing.T) {
	h, _ := testSetup(t)

	save, err := h.HandlePolicySave(context.Background(), makeRequest(map[string]any{
		"library":            "research",
		"enabled":            true,
		"keep_latest":        true,
		"age_threshold_days": 7,
		"schedule":           "0 5 * * *",
	}))
	if err != nil {
		t.Fatalf("HandlePolicySave error: %v", err)
	}
	if save.IsError {
		t.Fatalf("unexpected error result: %v", save.Content)
	}

	get, err := h.HandlePolicyGet(context.Background(), makeRequest(map[string]any{
		"library": "research",
	}))
	if err != nil {
		t.Fatalf("HandlePolicyGet error: %v", err)
	}
	payload := resultPayload(t, get)
	if payload["saved"] != true {
		t.Error("saved should be true")
	}
	pol, _ := payload["policy"].(map[string]any)
	if pol["age_threshold_days"] != float64(7) {
		t.Errorf("age_threshold_days = %v, want 7", pol["age_threshold_days"])
	}
}

func TestHandlePolicySave_Invalid(t *testing.T) {
	h, _ := testSetup(t)

	result, err := h.HandlePolicySave(context.Background(), makeRequest(map[string]any{
		"age_threshold_days": 0,
	}))
	if err != nil {
		t.Fatalf("HandlePolicySave error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for zero threshold")
	}
	payload := resultPayload(t, result)
	errObj, _ := payload["error"].(map[string]any)
	if errObj["code"] != "INVALID_POLICY" {
		t.Errorf("error code = %v, want INVALID_POLICY", errObj["code"])
	}
}

func TestHandleExport(t *testing.T) {
	h, _ := testSetup(t)
	id := addTranscript(t, h, "Exportable")
	completeTranscript(t, h, id, "content for the report")

	result, err := h.HandleExport(context.Background(), makeRequest(map[string]any{
		"format": "json",
	}))
	if err != nil {
		t.Fatalf("HandleExport error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %v", result.Content)
	}
	payload := resultPayload(t, result)
	path, _ := payload["path"].(string)
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("path = %q, want .json artifact", path)
	}
}

func TestHandleProtect_Idempotent(t *testing.T) {
	h, _ := testSetup(t)
	id := addTranscript(t, h, "Guarded")

	args := map[string]any{"ids": []any{id}}
	first, err := h.HandleProtect(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("HandleProtect error: %v", err)
	}
	if resultPayload(t, first)["changed"] != float64(1) {
		t.Error("first protect should change one record")
	}

	second, err := h.HandleProtect(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("repeat HandleProtect error: %v", err)
	}
	if resultPayload(t, second)["changed"] != float64(0) {
		t.Error("repeat protect should change nothing")
	}
}

func TestNewServer_DisabledTools(t *testing.T) {
	_, database := testSetup(t)

	cfg := config.DefaultConfig()
	cfg.DisabledTools = []string{"transcript_delete", "transcript_bulk_delete"}

	s := NewServer(database, cfg, nil, t.TempDir(), "test")
	if s == nil {
		t.Fatal("NewServer returned nil")
	}
}

func TestValidateDisabledTools(t *testing.T) {
	unknown := ValidateDisabledTools([]string{"transcript_add", "bogus_tool"})
	if len(unknown) != 1 || unknown[0] != "bogus_tool" {
		t.Errorf("unknown = %v, want [bogus_tool]", unknown)
	}
}
