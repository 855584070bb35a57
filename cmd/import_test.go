package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportCmd_Metadata(t *testing.T) {
	assert.Equal(t, "import", importCmd.Use)
	assert.NotEmpty(t, importCmd.Short)
}

func TestImportCmd_BadPath(t *testing.T) {
	cfg = sqliteConfig(t)

	importCmd.SetContext(context.Background())

	oldFile := importFile
	importFile = "/nonexistent/leads.csv"
	defer func() { importFile = oldFile }()

	err := importCmd.RunE(importCmd, nil)
	require.Error(t, err)
}

func TestImportCmd_LoadsCSV(t *testing.T) {
	cfg = sqliteConfig(t)

	csvPath := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"Company Name,Website,Contact Name,Contact Email\n"+
			"Camp Evergreen,campe.org,Jane Doe,none\n"+
			"Camp Evergreen,campe.org,Jane Doe,none\n"+
			"Lakeside Programs,lakeside.org,Sam Reyes,sam@lakeside.org\n"+
			",,,\n"), 0o644))

	importCmd.SetContext(context.Background())

	oldFile := importFile
	importFile = csvPath
	defer func() { importFile = oldFile }()

	require.NoError(t, importCmd.RunE(importCmd, nil))

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close()

	counts, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Organizations)
	// The duplicate Jane Doe row and the empty row are dropped.
	assert.Equal(t, int64(2), counts.Contacts)
}
