package mcp

import "github.com/mark3labs/mcp-go/mcp"

var addToolDef = mcp.NewTool("transcript_add",
	mcp.WithDescription("Register a new media entry as a pending transcript."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Display title, usually the source filename or video title")),
	mcp.WithString("source_kind", mcp.Description("Where the media came from: upload, url, or youtube")),
	mcp.WithString("source_ref", mcp.Description("Original filename or URL")),
	mcp.WithNumber("duration_seconds", mcp.Description("Media duration in seconds, when known")),
	mcp.WithArray("tags", mcp.Description("Tag names to attach; created on demand")),
)

var completeToolDef = mcp.NewTool("transcript_complete",
	mcp.WithDescription("Record a finished transcription: text, checksum, word count."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Transcript ULID")),
	mcp.WithString("text", mcp.Required(), mcp.Description("Transcript body")),
	mcp.WithString("checksum", mcp.Description("SHA-256 hex digest of the source media; derived from the text when omitted")),
)

var failToolDef = mcp.NewTool("transcript_fail",
	mcp.WithDescription("Mark a pending or processing transcript as failed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Transcript ULID")),
	mcp.WithString("reason", mcp.Description("Failure reason for the activity log")),
)

var fetchToolDef = mcp.NewTool("transcript_fetch",
	mcp.WithDescription("Retrieve a single transcript by ID."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Transcript ULID")),
	mcp.WithBoolean("include_deleted", mcp.Description("Also match soft-deleted records")),
	mcp.WithBoolean("include_text", mcp.Description("Include the transcript body (default: true)")),
)

var listToolDef = mcp.NewTool("transcript_list",
	mcp.WithDescription("List transcript summaries in a library, newest first."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithString("status", mcp.Description("Filter by lifecycle status: pending, processing, completed, failed")),
	mcp.WithString("tag", mcp.Description("Filter by tag name")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted records")),
)

var protectToolDef = mcp.NewTool("transcript_protect",
	mcp.WithDescription("Set or clear the protection flag on a batch of transcripts. Protected records are never auto-deleted."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithArray("ids", mcp.Required(), mcp.Description("Transcript ULIDs")),
	mcp.WithBoolean("protected", mcp.Description("true to protect, false to clear (default: true)")),
)

var deleteToolDef = mcp.NewTool("transcript_delete",
	mcp.WithDescription("Soft-delete a single transcript."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Transcript ULID")),
)

var bulkDeleteToolDef = mcp.NewTool("transcript_bulk_delete",
	mcp.WithDescription("Soft-delete a batch of transcripts. Already-deleted or unknown IDs are skipped."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithArray("ids", mcp.Required(), mcp.Description("Transcript ULIDs")),
)

var duplicatesToolDef = mcp.NewTool("transcript_duplicates",
	mcp.WithDescription("Scan a library for duplicate groups: two or more transcripts sharing a checksum."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
)

var cleanupPreviewToolDef = mcp.NewTool("transcript_cleanup_preview",
	mcp.WithDescription("Classify every duplicate group under the library's retention policy without deleting anything."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
)

var cleanupApplyToolDef = mcp.NewTool("transcript_cleanup_apply",
	mcp.WithDescription("Apply the retention policy now: soft-delete every deletable duplicate copy."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
)

var policyGetToolDef = mcp.NewTool("transcript_policy_get",
	mcp.WithDescription("Get the retention policy of a library, or the defaults when none is saved."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
)

var policySaveToolDef = mcp.NewTool("transcript_policy_save",
	mcp.WithDescription("Validate and save the retention policy of a library."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithBoolean("enabled", mcp.Description("Run cleanup on the saved schedule")),
	mcp.WithBoolean("keep_latest", mcp.Description("Always keep the newest copy of each group")),
	mcp.WithNumber("age_threshold_days", mcp.Required(), mcp.Description("Only delete copies older than this many days (minimum 1)")),
	mcp.WithString("schedule", mcp.Description("Cron schedule (default: daily at 3 AM)")),
)

var reportToolDef = mcp.NewTool("transcript_report",
	mcp.WithDescription("Build the aggregate duplicate report: summary plus per-group detail."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
)

var exportToolDef = mcp.NewTool("transcript_export",
	mcp.WithDescription("Write the duplicate report to disk as csv, json, markdown, or a zip archive of all three."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithString("format", mcp.Description("csv, json, markdown, or archive (default: archive)")),
	mcp.WithString("dir", mcp.Description("Destination directory (default: the exports directory)")),
)

var activityToolDef = mcp.NewTool("transcript_activity",
	mcp.WithDescription("Read the recent mutation history of a library."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithNumber("limit", mcp.Description("Number of entries (default 50, max 200)")),
)

var statsToolDef = mcp.NewTool("transcript_stats",
	mcp.WithDescription("Dashboard numbers: per-status counts, duplicate totals, monthly growth."),
	mcp.WithString("library", mcp.Description("Library name (default: \"default\")")),
	mcp.WithNumber("months", mcp.Description("Growth window in months (default 12)")),
)

var purgeToolDef = mcp.NewTool("transcript_purge",
	mcp.WithDescription("Permanently delete soft-deleted transcripts. Irreversible."),
	mcp.WithString("library", mcp.Description("Filter by library; all libraries when omitted")),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge records deleted more than this many days ago")),
)

var tagAttachToolDef = mcp.NewTool("transcript_tag_attach",
	mcp.WithDescription("Attach a tag (created on demand) to a transcript."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Transcript ULID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Tag name")),
)

var tagDetachToolDef = mcp.NewTool("transcript_tag_detach",
	mcp.WithDescription("Detach a tag from a transcript. Detaching a missing pair is a no-op."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Transcript ULID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Tag name")),
)
