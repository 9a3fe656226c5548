package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh root command with args and returns the
// combined output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// writeCSVFixture writes a small entity claim table and returns its path.
func writeCSVFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data1.csv")
	content := "Item,Property,Value\n" +
		"Douglas Adams,occupation,novelist\n" +
		"Douglas Adams,educated at,St John's College\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand(newRootCommand(), "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "wikiparity")
	assert.Contains(t, output, "compare")
	assert.Contains(t, output, "serve")
}

func TestCLIVersion(t *testing.T) {
	output, err := executeCommand(newRootCommand(), "version")
	require.NoError(t, err)
	assert.Contains(t, output, "wikiparity 0.1.0")
}

func TestCompareRejectsSingleEntity(t *testing.T) {
	_, err := executeCommand(newRootCommand(), "compare", "Q42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two entities")
}

func TestCompareNonInteractiveNeedsEntities(t *testing.T) {
	_, err := executeCommand(newRootCommand(), "compare", "--non-interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-interactive")
}

func TestCompareRejectsUnknownFormat(t *testing.T) {
	_, err := executeCommand(newRootCommand(), "compare", "--format", "xml", "Q42", "Q46248")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestInspectCSV(t *testing.T) {
	path := writeCSVFixture(t)

	output, err := executeCommand(newRootCommand(), "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Item: utf8")
	assert.Contains(t, output, "Douglas Adams")
	assert.Contains(t, output, "novelist")
}

func TestInspectRowLimit(t *testing.T) {
	path := writeCSVFixture(t)

	output, err := executeCommand(newRootCommand(), "inspect", path, "--rows", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "novelist")
	assert.NotContains(t, output, "St John's College")
	assert.Contains(t, output, "first 1 of 2 rows")
}

func TestInspectUnknownExtension(t *testing.T) {
	_, err := executeCommand(newRootCommand(), "inspect", "notes.txt")
	require.Error(t, err)
}

func TestSchemaValidateCSV(t *testing.T) {
	path := writeCSVFixture(t)

	output, err := executeCommand(newRootCommand(), "schema", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Schema:")
	assert.Contains(t, output, "Schema validation passed")
}

func TestSchemaCompare(t *testing.T) {
	path := writeCSVFixture(t)

	output, err := executeCommand(newRootCommand(), "schema", path, path)
	require.NoError(t, err)
	assert.Contains(t, output, "Schema Comparison")
	assert.Contains(t, output, "Schema validation passed")
}

func TestSchemaUnknownLevel(t *testing.T) {
	path := writeCSVFixture(t)

	_, err := executeCommand(newRootCommand(), "schema", path, "--level", "pedantic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pedantic")
}
