// Package paths resolves where apiconf keeps its configuration and its
// saved records.
//
// Config directory: --config-dir flag > APICONF_CONFIG_DIR > platform default.
// Data directory:   --data-dir flag > config.yaml data_dir > APICONF_DATA_DIR
// > $(CWD)/.apiconf-db.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "apiconf"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else is configured.
const DefaultDataDirName = ".apiconf-db"

// ConfigFileName is the configuration file inside the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "APICONF_CONFIG_DIR"
	EnvDataDir   = "APICONF_DATA_DIR"
)

// Resolver looks up directories. Its function fields default to the os
// package and can be replaced in tests.
type Resolver struct {
	GOOS          string
	Getenv        func(string) string
	HomeDir       func() (string, error)
	UserConfigDir func() (string, error)
	Getwd         func() (string, error)
}

// System returns a Resolver backed by the running process.
func System() Resolver {
	return Resolver{
		GOOS:          runtime.GOOS,
		Getenv:        os.Getenv,
		HomeDir:       os.UserHomeDir,
		UserConfigDir: os.UserConfigDir,
		Getwd:         os.Getwd,
	}
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/apiconf (fallback ~/.config/apiconf)
// Other:   os.UserConfigDir()/apiconf
func (r Resolver) DefaultConfigDir() (string, error) {
	return r.xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/apiconf (fallback ~/.local/share/apiconf)
// Other:   os.UserConfigDir()/apiconf
func (r Resolver) DefaultDataDir() (string, error) {
	return r.xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func (r Resolver) xdgDir(env, homeRel string) (string, error) {
	if r.GOOS != "linux" {
		dir, err := r.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := r.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := r.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir applies flag > APICONF_CONFIG_DIR > DefaultConfigDir.
// Overrides are made absolute.
func (r Resolver) ResolveConfigDir(flag string) (string, error) {
	if dir := firstNonEmpty(flag, r.Getenv(EnvConfigDir)); dir != "" {
		return filepath.Abs(dir)
	}
	return r.DefaultConfigDir()
}

// ResolveDataDir applies flag > configValue > APICONF_DATA_DIR >
// $(CWD)/.apiconf-db. The platform data directory is not used implicitly;
// records stay next to the project unless configured otherwise.
func (r Resolver) ResolveDataDir(flag, configValue string) (string, error) {
	if dir := firstNonEmpty(flag, configValue, r.Getenv(EnvDataDir)); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := r.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveConfigDir resolves the config directory for the running process.
func ResolveConfigDir(flag string) (string, error) {
	return System().ResolveConfigDir(flag)
}

// ResolveDataDir resolves the data directory for the running process.
func ResolveDataDir(flag, configValue string) (string, error) {
	return System().ResolveDataDir(flag, configValue)
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
