package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"serve", "ingest", "search", "shortlist", "resume", "sessions", "mcp", "version"}
	var got []string
	for _, sub := range cmd.Commands() {
		got = append(got, sub.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "talentsift")
	assert.Contains(t, out, "shortlist")
}

func TestRootCommand_VersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "talentsift version")
}

func TestSearchCommand_RequiresSkills(t *testing.T) {
	_, err := execute(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skills")
}

func TestShortlistCommand_RequiresQuery(t *testing.T) {
	_, err := execute(t, "shortlist")
	assert.Error(t, err)
}

func TestResumeCommand_RequiresID(t *testing.T) {
	_, err := execute(t, "resume", "show")
	assert.Error(t, err)
}
