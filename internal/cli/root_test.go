package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf(`
search:
  backend: rss
  rss:
    endpoint: http://127.0.0.1:1/rss
storage:
  driver: sqlite
  dsn: %s
notifications:
  channel: log
`, filepath.Join(dir, "curator.db"))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCommand(strings.NewReader(stdin), &out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQueriesCommandsPersist(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, err := execute(t, "", "--config", cfg, "queries", "add", "golang", "rust")
	require.NoError(t, err)
	assert.Contains(t, out, `query "golang" added`)

	out, err = execute(t, "", "--config", cfg, "--query", "zig", "queries", "list")
	require.NoError(t, err)
	assert.Equal(t, "golang\nrust\nzig\n", out)
}

func TestListCommandsOnEmptyStore(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)
	for _, name := range []string{"rank", "recommend", "sponsored"} {
		out, err := execute(t, "", "--config", cfg, name)
		require.NoError(t, err, name)
		assert.Equal(t, "No articles.\n", out, name)
	}
}

func TestFeedbackCommandValidates(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	_, err := execute(t, "", "--config", cfg, "feedback", "abc", "maybe")
	assert.ErrorContains(t, err, "unknown feedback")

	_, err = execute(t, "", "--config", cfg, "feedback", "abc", "interested")
	assert.ErrorContains(t, err, "not found")

	_, err = execute(t, "", "--config", cfg, "feedback", "abc")
	assert.Error(t, err)
}

func TestRootRunsMenu(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t)

	out, err := execute(t, "golang\nstop\n2\n4\n", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Enter your choice:")
	assert.Contains(t, out, "No articles.")

	out, err = execute(t, "", "--config", cfg, "queries", "list")
	require.NoError(t, err)
	assert.Equal(t, "golang\n", out)
}
