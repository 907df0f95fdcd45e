package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"scribe/internal/config"
	"scribe/internal/errors"
	"scribe/internal/event"
	"scribe/internal/ops"
	"scribe/internal/transcript"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	bus     *event.Bus
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, bus *event.Bus, baseDir string) *Handlers {
	return &Handlers{db: db, cfg: cfg, bus: bus, baseDir: baseDir}
}

// Request types for each tool

// AddRequest represents the arguments for add.
type AddRequest struct {
	Library         string   `json:"library,omitempty"`
	Title           string   `json:"title"`
	SourceKind      string   `json:"source_kind,omitempty"`
	SourceRef       *string  `json:"source_ref,omitempty"`
	DurationSeconds *int     `json:"duration_seconds,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// CompleteRequest represents the arguments for complete.
type CompleteRequest struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Checksum string `json:"checksum,omitempty"`
}

// FailRequest represents the arguments for fail.
type FailRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// FetchRequest represents the arguments for fetch.
type FetchRequest struct {
	ID             string `json:"id"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
	IncludeText    *bool  `json:"include_text,omitempty"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Library        string  `json:"library,omitempty"`
	Status         *string `json:"status,omitempty"`
	Tag            *string `json:"tag,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Offset         int     `json:"offset,omitempty"`
	IncludeDeleted bool    `json:"include_deleted,omitempty"`
}

// ProtectRequest represents the arguments for protect.
type ProtectRequest struct {
	Library   string   `json:"library,omitempty"`
	IDs       []string `json:"ids"`
	Protected *bool    `json:"protected,omitempty"`
}

// DeleteRequest represents the arguments for delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// BulkDeleteRequest represents the arguments for bulk_delete.
type BulkDeleteRequest struct {
	Library string   `json:"library,omitempty"`
	IDs     []string `json:"ids"`
}

// LibraryRequest represents the arguments of tools scoped to one library.
type LibraryRequest struct {
	Library string `json:"library,omitempty"`
}

// PolicySaveRequest represents the arguments for policy_save.
type PolicySaveRequest struct {
	Library          string `json:"library,omitempty"`
	Enabled          bool   `json:"enabled,omitempty"`
	KeepLatest       bool   `json:"keep_latest,omitempty"`
	AgeThresholdDays int    `json:"age_threshold_days"`
	Schedule         string `json:"schedule,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Library string `json:"library,omitempty"`
	Format  string `json:"format,omitempty"`
	Dir     string `json:"dir,omitempty"`
}

// PurgeRequest represents the arguments for purge.
type PurgeRequest struct {
	Library       *string `json:"library,omitempty"`
	OlderThanDays *int    `json:"older_than_days,omitempty"`
}

// ActivityRequest represents the arguments for activity.
type ActivityRequest struct {
	Library string `json:"library,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// StatsRequest represents the arguments for stats.
type StatsRequest struct {
	Library string `json:"library,omitempty"`
	Months  int    `json:"months,omitempty"`
}

// TagRequest represents the arguments for tag_attach and tag_detach.
type TagRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Handler implementations

// HandleAdd handles the add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Add(ctx, h.db, h.bus, ops.AddInput{
		Library:         input.Library,
		Title:           input.Title,
		SourceKind:      transcript.SourceKind(input.SourceKind),
		SourceRef:       input.SourceRef,
		DurationSeconds: input.DurationSeconds,
		Tags:            input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleComplete handles the complete tool call.
func (h *Handlers) HandleComplete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CompleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Complete(ctx, h.db, h.bus, ops.CompleteInput{
		ID:       input.ID,
		Text:     input.Text,
		Checksum: input.Checksum,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFail handles the fail tool call.
func (h *Handlers) HandleFail(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FailRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fail(ctx, h.db, h.bus, ops.FailInput{
		ID:     input.ID,
		Reason: input.Reason,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		ID:             input.ID,
		IncludeDeleted: input.IncludeDeleted,
		IncludeText:    input.IncludeText,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Library:        input.Library,
		Status:         input.Status,
		Tag:            input.Tag,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleProtect handles the protect tool call.
func (h *Handlers) HandleProtect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProtectRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	protected := true
	if input.Protected != nil {
		protected = *input.Protected
	}

	result, err := ops.Protect(ctx, h.db, h.bus, ops.ProtectInput{
		Library:   input.Library,
		IDs:       input.IDs,
		Protected: protected,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDelete handles the delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Delete(ctx, h.db, h.bus, ops.DeleteInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBulkDelete handles the bulk_delete tool call.
func (h *Handlers) HandleBulkDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BulkDeleteRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.BulkDelete(ctx, h.db, h.bus, ops.BulkDeleteInput{
		Library: input.Library,
		IDs:     input.IDs,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDuplicates handles the duplicates tool call.
func (h *Handlers) HandleDuplicates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LibraryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Duplicates(ctx, h.db, ops.DuplicatesInput{Library: input.Library})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCleanupPreview handles the cleanup_preview tool call.
func (h *Handlers) HandleCleanupPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LibraryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.CleanupPreview(ctx, h.db, ops.CleanupInput{Library: input.Library})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCleanupApply handles the cleanup_apply tool call.
func (h *Handlers) HandleCleanupApply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LibraryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.CleanupApply(ctx, h.db, h.bus, ops.CleanupInput{Library: input.Library})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePolicyGet handles the policy_get tool call.
func (h *Handlers) HandlePolicyGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LibraryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.PolicyGet(ctx, h.db, ops.PolicyGetInput{Library: input.Library})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePolicySave handles the policy_save tool call.
func (h *Handlers) HandlePolicySave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PolicySaveRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.PolicySave(ctx, h.db, h.bus, ops.PolicySaveInput{
		Library:          input.Library,
		Enabled:          input.Enabled,
		KeepLatest:       input.KeepLatest,
		AgeThresholdDays: input.AgeThresholdDays,
		Schedule:         input.Schedule,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReport handles the report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LibraryRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Report(ctx, h.db, ops.ReportInput{Library: input.Library})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Library: input.Library,
		Format:  ops.ExportFormat(input.Format),
		Dir:     input.Dir,
		BaseDir: h.baseDir,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleActivity handles the activity tool call.
func (h *Handlers) HandleActivity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ActivityRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Activity(ctx, h.db, ops.ActivityInput{
		Library: input.Library,
		Limit:   input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandlePurge handles the purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{
		Library:       input.Library,
		OlderThanDays: input.OlderThanDays,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStats handles the stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StatsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Stats(ctx, h.db, ops.StatsInput{
		Library: input.Library,
		Months:  input.Months,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagAttach handles the tag_attach tool call.
func (h *Handlers) HandleTagAttach(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.TagAttach(ctx, h.db, ops.TagAttachInput{ID: input.ID, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagDetach handles the tag_detach tool call.
func (h *Handlers) HandleTagDetach(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.TagDetach(ctx, h.db, ops.TagAttachInput{ID: input.ID, Name: input.Name})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.ScribeError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
