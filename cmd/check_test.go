package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verolang/vero/internal/store"
)

func runCheck(t *testing.T, paths ...string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunCheck(&buf, paths))
	return buf.String()
}

func TestCheck_CleanFile(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("vero/login.vero", []byte(loginSrc), 0o644))

	out := runCheck(t)

	assert.Contains(t, out, "checked 1 files, no problems")
}

func TestCheck_ReportsDiagnosticWithExcerpt(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("vero/login.vero", []byte(brokenSrc), 0o644))

	var buf bytes.Buffer
	err := RunCheck(&buf, nil)
	out := buf.String()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "check failed")
	assert.Contains(t, out, "vero/login.vero:5:5")
	assert.Contains(t, out, "expected WITH")
	assert.Contains(t, out, `   5 | `)
	assert.Contains(t, out, "^")
	assert.Contains(t, out, "checked 1 files, 1 problems")
}

func TestCheck_RecoveryReportsErrorAndSparesNeighbors(t *testing.T) {
	inTempDir(t)
	runInit(t)
	// One malformed statement flanked by two well-formed ones: exactly one
	// diagnostic, the neighbors stay silent.
	require.NoError(t, os.WriteFile("vero/login.vero", []byte(`FEATURE Login {
  SCENARIO "s" {
    CLICK css "#before"
    HOVER text "Menu"
    CLICK css "#after"
  }
}
`), 0o644))

	var buf bytes.Buffer
	err := RunCheck(&buf, nil)
	out := buf.String()

	require.Error(t, err)
	assert.Contains(t, out, "checked 1 files, 1 problems")
	assert.Contains(t, out, ":4:")
	assert.NotContains(t, out, ":3:")
	assert.NotContains(t, out, ":5:")
}

func TestCheck_WritesNothing(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("vero/login.vero", []byte(loginSrc), 0o644))

	runCheck(t)

	_, err := os.Stat("e2e")
	assert.True(t, os.IsNotExist(err))

	// The catalog stays untouched too.
	sqlDB, err := store.Open("vero/vero.db")
	require.NoError(t, err)
	defer sqlDB.Close()

	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestCheck_ExplicitPathNeedsNoProject(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile("standalone.vero", []byte(loginSrc), 0o644))

	out := runCheck(t, "standalone.vero")

	assert.Contains(t, out, "checked 1 files, no problems")
}

func TestCheck_MultipleFilesCountProblems(t *testing.T) {
	inTempDir(t)
	runInit(t)
	require.NoError(t, os.WriteFile("vero/a.vero", []byte(brokenSrc), 0o644))
	require.NoError(t, os.WriteFile("vero/b.vero", []byte(loginSrc), 0o644))

	var buf bytes.Buffer
	err := RunCheck(&buf, nil)
	out := buf.String()

	require.Error(t, err)
	assert.Contains(t, out, "checked 2 files, 1 problems")
	lines := strings.Split(out, "\n")
	assert.Contains(t, lines[len(lines)-2], "checked", "summary should be the last line")
}

func TestCheck_WithoutInit(t *testing.T) {
	inTempDir(t)

	var buf bytes.Buffer
	err := RunCheck(&buf, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run `vero init` first")
}
