package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{
		"import", "catchall", "discover", "validate",
		"enrich", "outreach", "export", "status", "serve",
	}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "outreach-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCatchallCommand_Flags(t *testing.T) {
	flag := catchallCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "catchall command should have --limit flag")
	assert.Equal(t, "50", flag.DefValue)

	dryRun := catchallCmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun, "catchall command should have --dry-run flag")
	assert.Equal(t, "false", dryRun.DefValue)
}

func TestDiscoverCommand_Flags(t *testing.T) {
	require.NotNil(t, discoverCmd.Flags().Lookup("contact-id"))
	require.NotNil(t, discoverCmd.Flags().Lookup("all"))

	workers := discoverCmd.Flags().Lookup("workers")
	require.NotNil(t, workers)
	assert.Equal(t, "3", workers.DefValue)
}

func TestImportCommand_RequiredFlags(t *testing.T) {
	flag := importCmd.Flags().Lookup("file")
	require.NotNil(t, flag, "import command should have --file flag")

	encoding := importCmd.Flags().Lookup("encoding")
	require.NotNil(t, encoding, "import command should have --encoding flag")
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	format := exportCmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "csv", format.DefValue)
}
