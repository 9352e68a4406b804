package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// env is an isolated config and data directory pair.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	root := t.TempDir()
	t.Setenv("APICONF_LOG_LEVEL", "")
	return env{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes the CLI and returns stdout.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "apiconf %s", strings.Join(args, " "))
	return out
}

// result runs a record command with --json and decodes its output.
func (e env) result(t *testing.T, args ...string) editResult {
	t.Helper()
	out := e.mustRun(t, append([]string{"--json"}, args...)...)
	var res editResult
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "version")
	assert.Contains(t, out, "apiconf v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "init")
	assert.Contains(t, out, "Initialized apiconf")

	raw, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)

	for _, name := range types.StandardTableNames {
		assert.FileExists(t, filepath.Join(e.dataDir, name+".jsonl"))
	}

	// Running again keeps the existing config.
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: sqlite\nlog_level: warn\n"), 0o644))
	e.mustRun(t, "init")
	raw, err = os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "log_level: warn")
}

func TestConfigErrors(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: postgres\n"), 0o644))
	_, err := e.run(t, "list", "entities")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.Equal(t, exitUserError, exitCode(err))

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("log_level: loud\n"), 0o644))
	_, err = e.run(t, "version")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestCreateListShow(t *testing.T) {
	e := newEnv(t)

	created := e.result(t, "create", "entities", `{"name":"orders"}`)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, types.StatusNew, created.Status)
	assert.False(t, created.CanUndo)
	require.True(t, created.Saved)
	assert.Equal(t, 1, created.Report.Written)
	assert.Contains(t, created.Diff, `+name: "orders"`)

	out := e.mustRun(t, "list", "entities")
	assert.Contains(t, out, `"name":"orders"`)
	assert.Equal(t, 1, strings.Count(out, "\n"))

	out = e.mustRun(t, "--json", "list", "deployment")
	assert.Equal(t, "[]\n", out)

	out = e.mustRun(t, "show", "entities", created.ID, "--field", "name")
	assert.Equal(t, "orders\n", out)

	_, err := e.run(t, "show", "entities", created.ID, "--field", "nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestCreateErrors(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown table", []string{"create", "widgets", `{}`}, types.ErrTableNotFound},
		{"not an object", []string{"create", "entities", `[1,2]`}, types.ErrInvalidData},
		{"unknown field", []string{"create", "entities", `{"colour":"red"}`}, types.ErrInvalidData},
		{"dangling parent", []string{"create", "attributes", `{"entity_id":"missing","name":"x"}`}, types.ErrDanglingReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}

	e.mustRun(t, "create", "entities", `{"id":"e1","name":"a"}`)
	_, err := e.run(t, "create", "entities", `{"id":"e1","name":"b"}`)
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestEditUndoRedo(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "deployment", `{"id":"prod","environment":"prod","host":"api.example.com","port":443,"replicas":2}`)

	res := e.result(t, "edit", "deployment", "prod", "set", "port=8443", "set", "env.LOG_LEVEL=debug", "undo")
	assert.Equal(t, types.StatusModified, res.Status)
	assert.True(t, res.CanUndo)
	assert.True(t, res.CanRedo)
	assert.Equal(t, 1, res.Report.Written)

	out := e.mustRun(t, "show", "deployment", "prod", "--field", "port")
	assert.Equal(t, "8443\n", out)
	_, err := e.run(t, "show", "deployment", "prod", "--field", "env.LOG_LEVEL")
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Undoing back to the stored value re-derives Pristine and writes nothing.
	res = e.result(t, "edit", "deployment", "prod", "set", "replicas=5", "undo")
	assert.Equal(t, types.StatusPristine, res.Status)
	assert.Equal(t, 0, res.Report.Written)
	assert.Equal(t, 1, res.Report.Unchanged)

	// Redo never re-derives Pristine.
	res = e.result(t, "edit", "deployment", "prod", "set", "replicas=5", "undo", "redo", "undo", "redo")
	assert.Equal(t, types.StatusModified, res.Status)
	out = e.mustRun(t, "show", "deployment", "prod", "--field", "replicas")
	assert.Equal(t, "5\n", out)
}

func TestEditNestedSet(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "deployment", `{"id":"d","environment":"dev","host":"localhost","port":80,"replicas":1,"env":{"A":"1"}}`)

	e.mustRun(t, "edit", "deployment", "d", "set", "env.B=two")
	out := e.mustRun(t, "show", "deployment", "d", "--field", "env")
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"A": "1", "B": "two"}, got)
}

func TestEditDryRun(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "entities", `{"id":"e","name":"before"}`)

	out := e.mustRun(t, "--dry-run", "edit", "entities", "e", "set", "name=after")
	assert.Contains(t, out, "status:   modified")
	assert.Contains(t, out, `-name: "before"`)
	assert.Contains(t, out, `+name: "after"`)
	assert.Contains(t, out, "not saved")

	out = e.mustRun(t, "show", "entities", "e", "--field", "name")
	assert.Equal(t, "before\n", out)
}

func TestEditDeleteRestore(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "entities", `{"id":"e","name":"keep"}`)

	res := e.result(t, "edit", "entities", "e", "set", "name=changed", "delete", "restore")
	assert.Equal(t, types.StatusPristine, res.Status)
	assert.JSONEq(t, `{"id":"e","name":"changed","read_only":false}`, string(res.Current))
	assert.Equal(t, 1, res.Report.Written)

	res = e.result(t, "edit", "entities", "e", "delete")
	assert.Equal(t, types.StatusDeleted, res.Status)
	assert.Nil(t, res.Current)
	assert.Equal(t, 1, res.Report.Deleted)

	_, err := e.run(t, "show", "entities", "e")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestEditErrors(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "entities", `{"id":"e","name":"x"}`)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing record", []string{"edit", "entities", "nope", "undo"}, types.ErrNotFound},
		{"unknown op", []string{"edit", "entities", "e", "rename"}, types.ErrInvalidArgument},
		{"set without value", []string{"edit", "entities", "e", "set"}, types.ErrInvalidArgument},
		{"mistyped value", []string{"edit", "entities", "e", "set", "read_only=\"yes\""}, types.ErrInvalidArgument},
		{"unknown field", []string{"edit", "entities", "e", "set", "colour=red"}, types.ErrInvalidArgument},
		{"field name in another case", []string{"edit", "entities", "e", "set", "Name=y"}, types.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.run(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestDeleteCascades(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "create", "entities", `{"id":"book","name":"Book"}`)
	e.mustRun(t, "create", "attributes", `{"id":"title","entity_id":"book","name":"title","type":"string"}`)
	e.mustRun(t, "create", "security", `{"id":"r","entity_id":"book","scheme":"jwt"}`)
	e.mustRun(t, "create", "security", `{"id":"global","scheme":"apikey"}`)

	out := e.mustRun(t, "delete", "entities", "book")
	assert.Contains(t, out, "status:   deleted")

	assert.Empty(t, e.mustRun(t, "list", "attributes"))
	out = e.mustRun(t, "list", "security")
	assert.Contains(t, out, `"id":"global"`)
	assert.NotContains(t, out, `"id":"r"`)
}

func TestParseOps(t *testing.T) {
	ops, err := parseOps([]string{"set", "a.b=1", "undo", "redo", "delete", "restore"})
	require.NoError(t, err)
	assert.Equal(t, []op{
		{name: opSet, path: "a.b", value: "1"},
		{name: opUndo},
		{name: opRedo},
		{name: opDelete},
		{name: opRestore},
	}, ops)

	_, err = parseOps(nil)
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = parseOps([]string{"set", "=1"})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestSetPatch(t *testing.T) {
	current := types.Deployment{ID: "d", Env: map[string]string{"A": "1"}}

	tests := []struct {
		name  string
		base  any
		path  string
		value string
		want  types.Patch
	}{
		{"number", current, "port", "8080", types.Patch{"port": float64(8080)}},
		{"bare string", current, "host", "example.com", types.Patch{"host": "example.com"}},
		{"quoted string", current, "host", `"true"`, types.Patch{"host": "true"}},
		{"nested keeps siblings", current, "env.B", "2", types.Patch{"env": map[string]any{"A": "1", "B": float64(2)}}},
		{"no base", nil, "env.B", "x", types.Patch{"env": map[string]any{"B": "x"}}},
		{"escaped dot", nil, `a\.b.c`, "1", types.Patch{"a.b": map[string]any{"c": float64(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := setPatch(tt.base, tt.path, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
