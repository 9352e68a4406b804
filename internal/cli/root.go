// Package cli implements the apiconf command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/apiconf/internal/paths"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// app holds the global flag values and the state loaded before a
// subcommand runs. Each root command owns its own app.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
	dryRun    bool

	cfg    *viper.Viper
	logger *slog.Logger
	stderr io.Writer
}

// NewRootCmd creates the top-level "apiconf" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "apiconf",
		Short: "Edit API configuration documents with undo and redo",
		Long: "apiconf edits the entities, attributes, security rules and deployment\n" +
			"settings of an API. Every edit is change-tracked: records can be undone,\n" +
			"redone, deleted and restored before they are saved.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.BoolVar(&a.dryRun, "dry-run", false, "apply changes in memory without saving them")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the code matching the
// error class.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "apiconf:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// setup resolves the config directory, reads config.yaml and builds the
// logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	a.configDir = configDir

	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	} else if err := level.UnmarshalText([]byte(cfg.GetString(cfgKeyLogLevel))); err != nil {
		return userError(fmt.Errorf("config %s: %w", cfgKeyLogLevel, err))
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configuration loaded", "config_dir", configDir, "backend", cfg.GetString(cfgKeyBackend))
	return nil
}

// storeConfig returns the Store configuration after applying data
// directory precedence.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{
		Backend: a.cfg.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userError(fmt.Errorf("config %s: %w", cfgKeyBackend, err))
	}
	return cfg, nil
}

// cliError carries the process exit code for an error.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error { return &cliError{code: exitUserError, err: err} }
func sysError(err error) error { return &cliError{code: exitSysError, err: err} }

// userErrors are the sentinels caused by bad input rather than a failing
// system.
var userErrors = []error{
	types.ErrInvalidArgument,
	types.ErrTableNotFound,
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrDanglingReference,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
}

// classify wraps err with the exit code its sentinel implies.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}

// exitCode maps an error returned by the root command to a process exit
// code. Errors raised by cobra itself, such as unknown flags, are user
// errors.
func exitCode(err error) int {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}
