package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/mcp"
	"github.com/hpungsan/autofill/internal/ops"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"profile": true, "settings": true,
	"export": true, "import": true, "clear": true,
	"ui": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false
	}
	arg := args[1]
	return cliCommands[arg] || isHelpOrVersion(args)
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help":
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func printBanner() {
	fmt.Println(`
  autofill: local form-autofill profiles

  Usage: autofill <command> [options]
         autofill --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Help and version need no store.
	if isHelpOrVersion(os.Args) {
		if err := newCLIApp(nil, nil).Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	cliMode := isCLIMode(os.Args)
	if !cliMode && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'autofill --help' for usage.\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, config.DirName)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = baseDir
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	role := "mcp"
	if cliMode {
		role = "cli"
	}
	log, err := logger.NewLogger(role, cfg.LogLevel)
	if err != nil {
		fatal("failed to create logger: %v", err)
	}

	store, closeStore, err := openStore(baseDir, cfg)
	if err != nil {
		fatal("failed to open %s store: %v", cfg.Backend, err)
	}
	defer closeStore()

	storage := ops.New(store, log)

	if cliMode {
		ctx := log.WithContext(context.Background())
		if err := newCLIApp(storage, cfg).RunContext(ctx, os.Args); err != nil {
			closeStore()
			fatal("%v", err)
		}
		return
	}

	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		log.Warn().Str("tool", name).Msg("unknown tool in disabled_tools")
	}
	for _, name := range mcp.ValidateDisabledTypes(cfg.DisabledTypes) {
		log.Warn().Str("type", name).Msg("unknown type in disabled_types")
	}

	log.Info().Str("backend", cfg.Backend).Str("version", Version).Msg("starting MCP server")
	if err := mcp.Run(storage, cfg, log, Version); err != nil {
		closeStore()
		fatal("%v", err)
	}
}
