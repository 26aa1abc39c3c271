package mcp

import "github.com/mark3labs/mcp-go/mcp"

func profileListTool() mcp.Tool {
	return mcp.NewTool(
		"profile_list",
		mcp.WithDescription("Lists saved autofill profiles (id, name, createdAt, lastUsed). Use profile_get for field values."),
	)
}

func profileGetTool() mcp.Tool {
	return mcp.NewTool(
		"profile_get",
		mcp.WithDescription("Returns one profile with all of its form field values."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile id")),
	)
}

func profileSaveTool() mcp.Tool {
	return mcp.NewTool(
		"profile_save",
		mcp.WithDescription("Creates a profile, or edits the profile with the given id. "+
			"Only the supplied name and fields change. Emails and phone numbers are validated."),
		mcp.WithString("id", mcp.Description("Profile to edit; omit to create a new profile")),
		mcp.WithString("name", mcp.Description("Profile label; required when creating")),
		mcp.WithObject("fields", mcp.Description(
			"Form field values keyed by field name: fullName, firstName, lastName, email, phone, "+
				"address, city, state, zipCode, country, company, jobTitle, workEmail, workPhone, "+
				"dateOfBirth, gender, website")),
		mcp.WithObject("custom_fields", mcp.Description("Free-form extra fields, string to string")),
	)
}

func profileDeleteTool() mcp.Tool {
	return mcp.NewTool(
		"profile_delete",
		mcp.WithDescription("Deletes a profile. Deleting an unknown id succeeds."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile id")),
	)
}

func profileUseTool() mcp.Tool {
	return mcp.NewTool(
		"profile_use",
		mcp.WithDescription("Marks a profile as just used (refreshes lastUsed) and returns it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile id")),
	)
}

func settingsGetTool() mcp.Tool {
	return mcp.NewTool(
		"settings_get",
		mcp.WithDescription("Returns the autofill settings."),
	)
}

func settingsSaveTool() mcp.Tool {
	return mcp.NewTool(
		"settings_save",
		mcp.WithDescription("Changes autofill settings. Omitted settings keep their current value."),
		mcp.WithBoolean("autoDetectFields", mcp.Description("Detect form fields automatically")),
		mcp.WithBoolean("confirmBeforeFill", mcp.Description("Ask before filling a form")),
		mcp.WithBoolean("saveFormTemplates", mcp.Description("Remember form layouts")),
		mcp.WithBoolean("encryptData", mcp.Description("Stored only; has no effect")),
	)
}

func dataExportTool() mcp.Tool {
	return mcp.NewTool(
		"data_export",
		mcp.WithDescription("Exports all profiles and settings. Writes a .json file "+
			"(default ~/.autofill/exports/autofill-data-<date>.json) unless inline is true."),
		mcp.WithString("path", mcp.Description("Destination .json file")),
		mcp.WithBoolean("inline", mcp.Description("Return the export document instead of writing a file")),
	)
}

func dataImportTool() mcp.Tool {
	return mcp.NewTool(
		"data_import",
		mcp.WithDescription("Imports an export document, replacing the stored profiles and/or settings it contains. "+
			"Give exactly one of path or document."),
		mcp.WithString("path", mcp.Description("Export .json file to read")),
		mcp.WithString("document", mcp.Description("Export document as a JSON string")),
	)
}

func dataClearTool() mcp.Tool {
	return mcp.NewTool(
		"data_clear",
		mcp.WithDescription("Deletes all profiles, settings and templates. Cannot be undone."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
	)
}
