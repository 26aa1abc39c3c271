package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/profile"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "profiles", "settings"
	Flash   string
}

// ListPageData is the template data for the profile list, with the
// selected profile's details when one is open.
type ListPageData struct {
	PageData
	Profiles []profile.UserProfile
	Selected *profile.UserProfile
	Sections []FieldSection
	Custom   []CustomField
}

// FormPageData is the template data for the create/edit form.
type FormPageData struct {
	PageData
	Profile   profile.UserProfile
	IsEditing bool
	Sections  []FieldSection
	Custom    string
	Problems  []string
}

// SettingsPageData is the template data for the settings page.
type SettingsPageData struct {
	PageData
	Settings profile.AutofillSettings
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// FieldSection groups form fields under a heading.
type FieldSection struct {
	Title  string
	Fields []Field
}

// Field is one fixed FormData field with its current value.
type Field struct {
	Key   string
	Label string
	Type  string
	Value string
}

// CustomField is one custom key/value pair, in key order.
type CustomField struct {
	Key   string
	Value string
}

var fieldSections = []struct {
	title string
	keys  []string
}{
	{"Personal Information", []string{"fullName", "firstName", "lastName", "email", "phone", "dateOfBirth", "gender"}},
	{"Address", []string{"address", "city", "state", "zipCode", "country"}},
	{"Work Information", []string{"company", "jobTitle", "workEmail", "workPhone"}},
	{"Other", []string{"website"}},
}

var fieldLabels = map[string]string{
	"fullName":    "Full Name",
	"firstName":   "First Name",
	"lastName":    "Last Name",
	"email":       "Email",
	"phone":       "Phone",
	"dateOfBirth": "Date of Birth",
	"gender":      "Gender",
	"address":     "Address",
	"city":        "City",
	"state":       "State",
	"zipCode":     "Zip Code",
	"country":     "Country",
	"company":     "Company",
	"jobTitle":    "Job Title",
	"workEmail":   "Work Email",
	"workPhone":   "Work Phone",
	"website":     "Website",
}

var fieldTypes = map[string]string{
	"email":       "email",
	"workEmail":   "email",
	"phone":       "tel",
	"workPhone":   "tel",
	"dateOfBirth": "date",
	"website":     "url",
}

// buildSections returns the fixed fields of d grouped for display.
func buildSections(d profile.FormData) []FieldSection {
	sections := make([]FieldSection, 0, len(fieldSections))
	for _, s := range fieldSections {
		section := FieldSection{Title: s.title}
		for _, key := range s.keys {
			value, _ := d.Get(key)
			typ := fieldTypes[key]
			if typ == "" {
				typ = "text"
			}
			section.Fields = append(section.Fields, Field{
				Key:   key,
				Label: fieldLabels[key],
				Type:  typ,
				Value: value,
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// sortedCustom returns custom fields ordered by key.
func sortedCustom(m map[string]string) []CustomField {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]CustomField, 0, len(keys))
	for _, k := range keys {
		out = append(out, CustomField{Key: k, Value: m[k]})
	}
	return out
}

// customText renders custom fields as "key=value" lines for the form.
func customText(m map[string]string) string {
	var b strings.Builder
	for _, f := range sortedCustom(m) {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
	return b.String()
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	log       *logger.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logger.Logger) (*Renderer, error) {
	if log == nil {
		log = logger.Nop()
	}

	funcMap := template.FuncMap{
		"formatTime": formatTime,
	}

	// Parse layout as the base template
	layoutTmpl, err := template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := map[string]string{
		"list":     "list.html",
		"form":     "form.html",
		"settings": "settings.html",
		"error":    "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t, err := layoutTmpl.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		log:       log,
	}, nil
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error().Str("template", name).Msg("template not found")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.Error().Err(err).Str("template", name).Msg("template execution error")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var aErr *errors.AutofillError
	if !stderrors.As(err, &aErr) {
		aErr = errors.NewInternal(err)
	}
	if aErr.Code == errors.ErrInternal || aErr.Code == errors.ErrPersistence {
		r.log.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
	}

	status := aErr.Status
	message := aErr.Message

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	// JSON request
	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(aErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// formatTime formats t as "2006-01-02 15:04" UTC; the zero time renders as "never".
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04")
}
