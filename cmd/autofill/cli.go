package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/ops"
	"github.com/hpungsan/autofill/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store ops.ProfileStore, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "autofill",
		Usage:   "Local form-autofill profile store",
		Version: Version,
		Commands: []*cli.Command{
			profileCmd(store),
			settingsCmd(store),
			exportCmd(store, cfg),
			importCmd(store, cfg),
			clearCmd(store),
			uiCmd(store, cfg),
		},
		// Addresses and company names contain commas.
		DisableSliceFlagSeparator: true,
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// editFlags are shared by profile create and profile edit.
func editFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Profile name"},
		&cli.StringSliceFlag{Name: "field", Aliases: []string{"f"}, Usage: "Form field as key=value (e.g. email=a@b.co)"},
		&cli.StringSliceFlag{Name: "custom", Aliases: []string{"c"}, Usage: "Custom field as key=value"},
	}
}

// profileCmd creates the profile command group.
func profileCmd(store ops.ProfileStore) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Manage autofill profiles",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all profiles",
				Action: func(c *cli.Context) error {
					return outputJSON(c, store.GetProfiles(c.Context))
				},
			},
			{
				Name:      "show",
				Usage:     "Show a profile by ID",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := requireID(c)
					if err != nil {
						return outputError(err)
					}
					p, ok := store.GetProfile(c.Context, id)
					if !ok {
						return outputError(errors.NewNotFound(id))
					}
					return outputJSON(c, p)
				},
			},
			{
				Name:  "create",
				Usage: "Create a new profile",
				Flags: editFlags(),
				Action: func(c *cli.Context) error {
					if strings.TrimSpace(c.String("name")) == "" {
						return outputError(errors.NewInvalidRequest("--name is required"))
					}
					return upsert(c, store, "")
				},
			},
			{
				Name:      "edit",
				Usage:     "Edit an existing profile",
				ArgsUsage: "<id>",
				Flags:     editFlags(),
				Action: func(c *cli.Context) error {
					id, err := requireID(c)
					if err != nil {
						return outputError(err)
					}
					return upsert(c, store, id)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a profile",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := requireID(c)
					if err != nil {
						return outputError(err)
					}
					if err := store.DeleteProfile(c.Context, id); err != nil {
						return outputError(err)
					}
					return outputJSON(c, map[string]any{"id": id, "deleted": true})
				},
			},
			{
				Name:      "use",
				Usage:     "Mark a profile as just used",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id, err := requireID(c)
					if err != nil {
						return outputError(err)
					}
					p, err := store.MarkUsed(c.Context, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, p)
				},
			},
		},
	}
}

func upsert(c *cli.Context, store ops.ProfileStore, id string) error {
	edit, err := editFromFlags(c)
	if err != nil {
		return outputError(err)
	}
	p, err := ops.UpsertProfile(c.Context, store, id, edit)
	if err != nil {
		return outputError(err)
	}
	return outputJSON(c, p)
}

func editFromFlags(c *cli.Context) (ops.ProfileEdit, error) {
	var edit ops.ProfileEdit
	if c.IsSet("name") {
		name := c.String("name")
		edit.Name = &name
	}
	fields, err := parseKeyValues(c.StringSlice("field"))
	if err != nil {
		return edit, err
	}
	custom, err := parseKeyValues(c.StringSlice("custom"))
	if err != nil {
		return edit, err
	}
	edit.Fields, edit.Custom = fields, custom
	return edit, nil
}

// settingsCmd creates the settings command group.
func settingsCmd(store ops.ProfileStore) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change autofill settings",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show current settings",
				Action: func(c *cli.Context) error {
					return outputJSON(c, store.GetSettings(c.Context))
				},
			},
			{
				Name:  "set",
				Usage: "Change settings (unset flags keep their value)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "auto-detect-fields", Usage: "Detect form fields automatically"},
					&cli.BoolFlag{Name: "confirm-before-fill", Usage: "Ask before filling a form"},
					&cli.BoolFlag{Name: "save-form-templates", Usage: "Remember form layouts"},
					&cli.BoolFlag{Name: "encrypt-data", Usage: "Encrypt stored data (recorded only)"},
				},
				Action: func(c *cli.Context) error {
					settings := store.GetSettings(c.Context)
					applyBoolFlag(c, "auto-detect-fields", &settings.AutoDetectFields)
					applyBoolFlag(c, "confirm-before-fill", &settings.ConfirmBeforeFill)
					applyBoolFlag(c, "save-form-templates", &settings.SaveFormTemplates)
					applyBoolFlag(c, "encrypt-data", &settings.EncryptData)

					if err := store.SaveSettings(c.Context, settings); err != nil {
						return outputError(err)
					}
					return outputJSON(c, settings)
				},
			},
		},
	}
}

func applyBoolFlag(c *cli.Context, name string, dst *bool) {
	if c.IsSet(name) {
		*dst = c.Bool(name)
	}
}

// exportCmd creates the export command.
func exportCmd(store ops.ProfileStore, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export profiles and settings to a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: ~/.autofill/exports/autofill-data-<date>.json)"},
			&cli.BoolFlag{Name: "stdout", Usage: "Write the document to stdout instead of a file"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("stdout") {
				doc, err := store.ExportData(c.Context)
				if err != nil {
					return outputError(err)
				}
				_, err = fmt.Fprintln(c.App.Writer, doc)
				return err
			}

			output, err := ops.ExportFile(c.Context, store, cfg, ops.ExportFileInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(store ops.ProfileStore, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import profiles and settings from a JSON file (or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file to import"},
		},
		Action: func(c *cli.Context) error {
			if path := c.String("path"); path != "" {
				output, err := ops.ImportFile(c.Context, store, cfg, ops.ImportFileInput{Path: path})
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c, output)
			}

			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("--path is required (or pipe a document via stdin)"))
			}
			doc, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			output, err := importDocument(c.Context, store, doc)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

func importDocument(ctx context.Context, store ops.ProfileStore, doc string) (*ops.ImportFileOutput, error) {
	if !store.ImportData(ctx, doc) {
		return nil, errors.NewImportFailed()
	}
	return &ops.ImportFileOutput{
		Imported: true,
		Profiles: len(store.GetProfiles(ctx)),
	}, nil
}

// clearCmd creates the clear command.
func clearCmd(store ops.ProfileStore) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove all profiles, settings and templates",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm removal"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("refusing to clear without --yes"))
			}
			store.ClearAllData(c.Context)
			return outputJSON(c, map[string]any{"cleared": true})
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(store ops.ProfileStore, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the profile manager in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8484, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}
			log := logger.FromContext(c.Context)
			srv, err := web.NewServer(store, cfg, log, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, log)
		},
	}
}

// requireID returns the first positional argument.
func requireID(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", errors.NewInvalidRequest("profile id is required")
	}
	return id, nil
}

// outputJSON writes result to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var aErr *errors.AutofillError
	if stderrors.As(err, &aErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", aErr.Code, aErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// parseKeyValues turns ["email=a@b.co", ...] into a map. Empty values are
// allowed and clear the field.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("expected key=value, got %q", pair))
		}
		out[key] = value
	}
	return out, nil
}
