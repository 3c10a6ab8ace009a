package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answerFixture = `FUNC, "func";
IDENTIFIER, "int";
IDENTIFIER, "answer";
LPAREN, "(";
RPAREN, ")";
LBRACE, "{";
RETURN, "return";
INT, "42";
SEMICOLON, ";";
RBRACE, "}";
`

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "answer.tok")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestRunBuildSucceedsAndEmitsIR(t *testing.T) {
	path := writeFixture(t, answerFixture)
	// No owly.toml in this temp dir, so --config points somewhere absent;
	// config.Load treats that as "use defaults".
	stdout, stderr, err := runCmd(t, "--config", filepath.Join(t.TempDir(), "owly.toml"), "--emit-ir", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "func answer")
}

func TestRunBuildMissingFileReportsError(t *testing.T) {
	_, _, err := runCmd(t, filepath.Join(t.TempDir(), "does-not-exist.tok"))
	assert.Error(t, err)
}

func TestRunBuildMalformedFixtureReportsError(t *testing.T) {
	path := writeFixture(t, "not a valid record\n")
	_, _, err := runCmd(t, path)
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reading"))
}

func TestRunBuildSemanticErrorPrintsDiagnosticAndFails(t *testing.T) {
	fixture := `FUNC, "func";
IDENTIFIER, "void";
IDENTIFIER, "f";
LPAREN, "(";
RPAREN, ")";
LBRACE, "{";
RETURN, "return";
IDENTIFIER, "missing";
SEMICOLON, ";";
RBRACE, "}";
`
	path := writeFixture(t, fixture)
	_, stderr, err := runCmd(t, path)
	assert.Error(t, err)
	assert.Contains(t, stderr, "error:")
}
