package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"profile", "settings", "data"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     func() mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"profile_list": {
		def:     profileListTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileList },
	},
	"profile_get": {
		def:     profileGetTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileGet },
	},
	"profile_save": {
		def:     profileSaveTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileSave },
	},
	"profile_delete": {
		def:     profileDeleteTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileDelete },
	},
	"profile_use": {
		def:     profileUseTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfileUse },
	},
	"settings_get": {
		def:     settingsGetTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"settings_save": {
		def:     settingsSaveTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsSave },
	},
	"data_export": {
		def:     dataExportTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDataExport },
	},
	"data_import": {
		def:     dataImportTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDataImport },
	},
	"data_clear": {
		def:     dataClearTool,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDataClear },
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

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "profile_save" → "profile").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with the autofill tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(store ops.ProfileStore, cfg *config.Config, log *logger.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"autofill",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	if log == nil {
		log = logger.Nop()
	}
	h := NewHandlers(store, cfg, log)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			log.Debug().Str("tool", name).Msg("tool disabled")
			continue
		}
		s.AddTool(entry.def(), entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(store ops.ProfileStore, cfg *config.Config, log *logger.Logger, version string) error {
	s := NewServer(store, cfg, log, version)
	return server.ServeStdio(s)
}
