package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"scribe/internal/config"
	"scribe/internal/event"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"transcript_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"transcript_complete": {
		def:     completeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleComplete },
	},
	"transcript_fail": {
		def:     failToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFail },
	},
	"transcript_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"transcript_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"transcript_protect": {
		def:     protectToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProtect },
	},
	"transcript_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"transcript_bulk_delete": {
		def:     bulkDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBulkDelete },
	},
	"transcript_duplicates": {
		def:     duplicatesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDuplicates },
	},
	"transcript_cleanup_preview": {
		def:     cleanupPreviewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCleanupPreview },
	},
	"transcript_cleanup_apply": {
		def:     cleanupApplyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCleanupApply },
	},
	"transcript_policy_get": {
		def:     policyGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePolicyGet },
	},
	"transcript_policy_save": {
		def:     policySaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePolicySave },
	},
	"transcript_report": {
		def:     reportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
	"transcript_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"transcript_activity": {
		def:     activityToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivity },
	},
	"transcript_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"transcript_purge": {
		def:     purgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
	"transcript_tag_attach": {
		def:     tagAttachToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagAttach },
	},
	"transcript_tag_detach": {
		def:     tagDetachToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagDetach },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Scribe tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, bus *event.Bus, baseDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"scribe",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, bus, baseDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, bus *event.Bus, baseDir, version string) error {
	s := NewServer(db, cfg, bus, baseDir, version)
	return server.ServeStdio(s)
}
