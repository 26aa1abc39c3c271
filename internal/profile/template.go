package profile

import "time"

// FieldType is the kind of form control a mapping targets.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

// FieldMapping ties a form control to a FormData key.
// Declared for field detection; nothing builds or stores these yet.
type FieldMapping struct {
	Selector  string    `json:"selector"`
	DataKey   string    `json:"dataKey"` // a FieldKeys entry or a custom field name
	FieldType FieldType `json:"fieldType"`

	// Confidence is in [0, 1]
	Confidence float64 `json:"confidence"`
}

// FormField describes a control found on a hosted form.
type FormField struct {
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

// FormTemplate is a saved set of mappings for one form URL.
type FormTemplate struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	URL           string         `json:"url"`
	FieldMappings []FieldMapping `json:"fieldMappings"`
	LastUsed      time.Time      `json:"lastUsed"`
}
