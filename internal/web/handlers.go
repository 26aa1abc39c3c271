package web

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/ops"
	"github.com/hpungsan/autofill/internal/profile"
)

const maxFormBytes = 1 << 20

// flashMessages maps the ?msg= codes set by redirects to the text shown.
var flashMessages = map[string]string{
	"saved":    "Profile saved.",
	"deleted":  "Profile deleted.",
	"imported": "Data imported successfully!",
	"settings": "Settings saved.",
}

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    ops.ProfileStore
	cfg      *config.Config
	log      *logger.Logger
	renderer *Renderer
}

func (h *Handlers) page(r *http.Request, title, nav string) PageData {
	return PageData{
		Title:   title,
		Version: h.renderer.version,
		Nav:     nav,
		Flash:   flashMessages[r.URL.Query().Get("msg")],
	}
}

// HandleList handles GET /profiles.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles := h.store.GetProfiles(r.Context())

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, profiles)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: h.page(r, "Profiles", "profiles"),
		Profiles: profiles,
	})
}

// HandleDetail handles GET /profiles/{id}: the list with one profile open.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := h.store.GetProfile(r.Context(), id)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: h.page(r, p.DisplayName(), "profiles"),
		Profiles: h.store.GetProfiles(r.Context()),
		Selected: &p,
		Sections: buildSections(p.Data),
		Custom:   sortedCustom(p.Data.CustomFields),
	})
}

// HandleNew handles GET /profiles/new.
func (h *Handlers) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "form", FormPageData{
		PageData: h.page(r, "New Profile", "profiles"),
		Sections: buildSections(profile.FormData{}),
	})
}

// HandleEdit handles GET /profiles/{id}/edit.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := h.store.GetProfile(r.Context(), id)
	if !ok {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	h.renderer.renderPage(w, r, "form", FormPageData{
		PageData:  h.page(r, "Edit Profile", "profiles"),
		Profile:   p,
		IsEditing: true,
		Sections:  buildSections(p.Data),
		Custom:    customText(p.Data.CustomFields),
	})
}

// HandleSave handles POST /profiles. An empty id field creates a profile;
// otherwise the profile with that id is replaced by the submitted form.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	id := strings.TrimSpace(r.PostFormValue("id"))
	name := r.PostFormValue("name")
	rawCustom := r.PostFormValue("custom")

	fields := make(map[string]string, len(profile.FieldKeys))
	for _, key := range profile.FieldKeys {
		fields[key] = strings.TrimSpace(r.PostFormValue(key))
	}

	var problems []string
	if strings.TrimSpace(name) == "" {
		problems = append(problems, "Profile name is required")
	}
	custom, err := parseCustomText(rawCustom)
	if err != nil {
		problems = append(problems, err.Error())
	}

	var saved profile.UserProfile
	if len(problems) == 0 {
		saved, err = ops.UpsertProfile(r.Context(), h.store, id, ops.ProfileEdit{
			Name:          &name,
			Fields:        fields,
			Custom:        custom,
			ReplaceCustom: true,
		})
		if err != nil {
			problems = validationProblems(err)
			if problems == nil {
				h.renderer.renderError(w, r, err)
				return
			}
		}
	}

	if len(problems) > 0 {
		if wantsJSON(r) {
			renderJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{
					"code":     string(errors.ErrInvalidRequest),
					"message":  "invalid profile",
					"problems": problems,
					"status":   http.StatusBadRequest,
				},
			})
			return
		}

		draft := profile.UserProfile{ID: id, Name: name}
		for key, value := range fields {
			_ = draft.Data.Set(key, value)
		}
		h.renderer.renderPageStatus(w, r, http.StatusBadRequest, "form", FormPageData{
			PageData:  h.page(r, "Fix Profile", "profiles"),
			Profile:   draft,
			IsEditing: id != "",
			Sections:  buildSections(draft.Data),
			Custom:    rawCustom,
			Problems:  problems,
		})
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, saved)
		return
	}
	redirect(w, r, "/profiles/"+saved.ID+"?msg=saved")
}

// validationProblems returns the per-field problems carried by an
// INVALID_REQUEST error, or nil for any other error.
func validationProblems(err error) []string {
	var aErr *errors.AutofillError
	if !stderrors.As(err, &aErr) || aErr.Code != errors.ErrInvalidRequest {
		return nil
	}
	if problems, ok := aErr.Details["problems"].([]string); ok {
		return problems
	}
	return []string{aErr.Message}
}

// HandleDelete handles DELETE /profiles/{id} and POST /profiles/{id}/delete.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("profile ID is required"))
		return
	}

	if err := h.store.DeleteProfile(r.Context(), id); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/profiles?msg=deleted")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": true,
			"id":      id,
		})
		return
	}

	redirect(w, r, "/profiles?msg=deleted")
}

// HandleUse handles POST /profiles/{id}/use.
func (h *Handlers) HandleUse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := h.store.MarkUsed(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, p)
		return
	}
	redirect(w, r, "/profiles/"+p.ID)
}

// HandleSettings handles GET /settings.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.store.GetSettings(r.Context())

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, settings)
		return
	}

	h.renderer.renderPage(w, r, "settings", SettingsPageData{
		PageData: h.page(r, "Settings", "settings"),
		Settings: settings,
	})
}

// HandleSaveSettings handles POST /settings. The form posts every
// checkbox, so an absent value means unchecked.
func (h *Handlers) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	settings := profile.AutofillSettings{
		AutoDetectFields:  formBool(r, "autoDetectFields"),
		ConfirmBeforeFill: formBool(r, "confirmBeforeFill"),
		SaveFormTemplates: formBool(r, "saveFormTemplates"),
		EncryptData:       formBool(r, "encryptData"),
	}

	if err := h.store.SaveSettings(r.Context(), settings); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, settings)
		return
	}
	redirect(w, r, "/settings?msg=settings")
}

// HandleExport handles GET /export: the export document as a download.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.ExportData(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ops.ExportFileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

// HandleImport handles POST /import with a multipart "file" upload.
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ops.MaxImportFileBytes+maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid upload"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, ops.MaxImportFileBytes+1))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}
	if len(data) > ops.MaxImportFileBytes {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(
			fmt.Sprintf("import file exceeds %d bytes", ops.MaxImportFileBytes)))
		return
	}

	if !h.store.ImportData(r.Context(), string(data)) {
		h.renderer.renderError(w, r, errors.NewImportFailed())
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, ops.ImportFileOutput{
			Imported: true,
			Profiles: len(h.store.GetProfiles(r.Context())),
		})
		return
	}
	redirect(w, r, "/profiles?msg=imported")
}

// parseCustomText parses "key=value" lines. Blank lines are skipped.
func parseCustomText(s string) (map[string]string, error) {
	out := make(map[string]string)
	for i, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("custom field line %d: expected key=value", i+1)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

func formBool(r *http.Request, name string) bool {
	v := r.PostFormValue(name)
	return v == "true" || v == "on" || v == "1"
}

// redirect sends a 303 so the browser follows a POST with a GET.
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
