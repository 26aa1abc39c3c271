package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store ops.ProfileStore
	cfg   *config.Config
	log   *logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store ops.ProfileStore, cfg *config.Config, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{store: store, cfg: cfg, log: log}
}

// Request types for each tool

// IDRequest is the argument shape of profile_get, profile_delete and profile_use.
type IDRequest struct {
	ID string `json:"id"`
}

// ProfileSaveRequest represents the arguments for profile_save.
type ProfileSaveRequest struct {
	ID           string            `json:"id,omitempty"`
	Name         *string           `json:"name,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// SettingsSaveRequest represents the arguments for settings_save.
type SettingsSaveRequest struct {
	AutoDetectFields  *bool `json:"autoDetectFields,omitempty"`
	ConfirmBeforeFill *bool `json:"confirmBeforeFill,omitempty"`
	SaveFormTemplates *bool `json:"saveFormTemplates,omitempty"`
	EncryptData       *bool `json:"encryptData,omitempty"`
}

// DataExportRequest represents the arguments for data_export.
type DataExportRequest struct {
	Path   string `json:"path,omitempty"`
	Inline bool   `json:"inline,omitempty"`
}

// DataImportRequest represents the arguments for data_import.
type DataImportRequest struct {
	Path     string `json:"path,omitempty"`
	Document string `json:"document,omitempty"`
}

// DataClearRequest represents the arguments for data_clear.
type DataClearRequest struct {
	Confirm bool `json:"confirm"`
}

// ProfileSummary is one row of profile_list.
type ProfileSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

// Handler implementations

// HandleProfileList handles the profile_list tool call.
func (h *Handlers) HandleProfileList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profiles := h.store.GetProfiles(ctx)
	items := make([]ProfileSummary, len(profiles))
	for i, p := range profiles {
		items[i] = ProfileSummary{
			ID:        p.ID,
			Name:      p.DisplayName(),
			CreatedAt: p.CreatedAt,
			LastUsed:  p.LastUsed,
		}
	}
	return successResult(map[string]any{"profiles": items, "count": len(items)})
}

// HandleProfileGet handles the profile_get tool call.
func (h *Handlers) HandleProfileGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID(req)
	if err != nil {
		return errorResult(err), nil
	}

	p, ok := h.store.GetProfile(ctx, input.ID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}
	return successResult(p)
}

// HandleProfileSave handles the profile_save tool call.
func (h *Handlers) HandleProfileSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProfileSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	p, err := ops.UpsertProfile(ctx, h.store, input.ID, ops.ProfileEdit{
		Name:   input.Name,
		Fields: input.Fields,
		Custom: input.CustomFields,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleProfileDelete handles the profile_delete tool call.
func (h *Handlers) HandleProfileDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID(req)
	if err != nil {
		return errorResult(err), nil
	}

	if err := h.store.DeleteProfile(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": input.ID, "deleted": true})
}

// HandleProfileUse handles the profile_use tool call.
func (h *Handlers) HandleProfileUse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decodeID(req)
	if err != nil {
		return errorResult(err), nil
	}

	p, err := h.store.MarkUsed(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(p)
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.store.GetSettings(ctx))
}

// HandleSettingsSave handles the settings_save tool call.
func (h *Handlers) HandleSettingsSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	settings := h.store.GetSettings(ctx)
	applyBool(&settings.AutoDetectFields, input.AutoDetectFields)
	applyBool(&settings.ConfirmBeforeFill, input.ConfirmBeforeFill)
	applyBool(&settings.SaveFormTemplates, input.SaveFormTemplates)
	applyBool(&settings.EncryptData, input.EncryptData)

	if err := h.store.SaveSettings(ctx, settings); err != nil {
		return errorResult(err), nil
	}
	return successResult(settings)
}

// HandleDataExport handles the data_export tool call.
func (h *Handlers) HandleDataExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DataExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.Inline {
		if input.Path != "" {
			return errorResult(errors.NewInvalidRequest("path and inline are mutually exclusive")), nil
		}
		document, err := h.store.ExportData(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"document": document})
	}

	result, err := ops.ExportFile(ctx, h.store, h.cfg, ops.ExportFileInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}
	h.log.Info().Str("path", result.Path).Int("profiles", result.Profiles).Msg("data exported")
	return successResult(result)
}

// HandleDataImport handles the data_import tool call.
func (h *Handlers) HandleDataImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DataImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	switch {
	case input.Path != "" && input.Document != "":
		return errorResult(errors.NewInvalidRequest("path and document are mutually exclusive")), nil
	case input.Path != "":
		result, err := ops.ImportFile(ctx, h.store, h.cfg, ops.ImportFileInput{Path: input.Path})
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	case input.Document != "":
		if !h.store.ImportData(ctx, input.Document) {
			return errorResult(errors.NewImportFailed()), nil
		}
		return successResult(ops.ImportFileOutput{
			Imported: true,
			Profiles: len(h.store.GetProfiles(ctx)),
		})
	default:
		return errorResult(errors.NewInvalidRequest("path or document is required")), nil
	}
}

// HandleDataClear handles the data_clear tool call.
func (h *Handlers) HandleDataClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DataClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm must be true")), nil
	}

	h.store.ClearAllData(ctx)
	h.log.Info().Msg("all data cleared")
	return successResult(map[string]any{"cleared": true})
}

// decodeID decodes an IDRequest and requires a non-empty id.
func decodeID(req mcp.CallToolRequest) (IDRequest, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return input, errors.NewInvalidRequest(err.Error())
	}
	if input.ID == "" {
		return input, errors.NewInvalidRequest("id is required")
	}
	return input, nil
}

func applyBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var aErr *errors.AutofillError
	if stderrors.As(err, &aErr) {
		errorObj := map[string]any{
			"code":    aErr.Code,
			"message": aErr.Message,
			"status":  aErr.Status,
		}
		// INTERNAL details can carry file paths and SQL errors.
		if aErr.Code != errors.ErrInternal && aErr.Details != nil {
			errorObj["details"] = aErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
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
