package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

// cliEnv runs taskpad in-process against temporary config and data
// directories.
type cliEnv struct {
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TASKPAD_GEMINI_API_KEY", "")
	t.Setenv("TASKPAD_DATA_DIR", "")
	root := t.TempDir()
	return &cliEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// writeConfig writes config.yaml before the first run so loadConfig keeps it.
func (e *cliEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(content), 0o644))
}

func (e *cliEnv) run(args ...string) (stdout, stderr string, code int) {
	var out, errOut bytes.Buffer
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code = run(full, &out, &errOut)
	return out.String(), errOut.String(), code
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, code := e.run(args...)
	require.Equal(t, exitSuccess, code, "taskpad %s\nstdout: %s\nstderr: %s", strings.Join(args, " "), stdout, stderr)
	return stdout
}

// mustRunJSON runs a command with --json and decodes its output into v.
func (e *cliEnv) mustRunJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out := e.mustRun(t, append([]string{"--json"}, args...)...)
	require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
}

func (e *cliEnv) addTask(t *testing.T, args ...string) types.Task {
	t.Helper()
	var task types.Task
	e.mustRunJSON(t, &task, append([]string{"add"}, args...)...)
	require.NotEmpty(t, task.TaskID)
	return task
}

func (e *cliEnv) showTask(t *testing.T, id string) types.Task {
	t.Helper()
	var task types.Task
	e.mustRunJSON(t, &task, "show", id)
	return task
}

func (e *cliEnv) listTasks(t *testing.T, args ...string) []types.Task {
	t.Helper()
	var tasks []types.Task
	e.mustRunJSON(t, &tasks, append([]string{"list"}, args...)...)
	return tasks
}

func taskTitles(tasks []types.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}
