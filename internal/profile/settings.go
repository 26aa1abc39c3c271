package profile

// AutofillSettings is the process-wide configuration record.
type AutofillSettings struct {
	AutoDetectFields  bool `json:"autoDetectFields"`
	ConfirmBeforeFill bool `json:"confirmBeforeFill"`
	SaveFormTemplates bool `json:"saveFormTemplates"`

	// EncryptData is stored but not acted on.
	EncryptData bool `json:"encryptData"`
}

// DefaultSettings returns a fresh copy of the default settings.
func DefaultSettings() AutofillSettings {
	return AutofillSettings{
		AutoDetectFields:  true,
		ConfirmBeforeFill: true,
		SaveFormTemplates: true,
		EncryptData:       false,
	}
}
