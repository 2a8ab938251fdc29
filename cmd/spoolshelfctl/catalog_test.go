package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCheck(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "filaments.json")
	require.NoError(t, os.WriteFile(data, []byte(`[
		{"id": 1, "name": "PLA Basic", "manufacturer": "eSun", "type": "PLA", "price": 1190, "rating": 4.6},
		{"id": 2, "manufacturer": "Bestfilament", "type": "PETG"},
		{"id": 3, "name": "No type", "manufacturer": "eSun", "price": 990}
	]`), 0o600))
	t.Setenv("SPOOLSHELF_CATALOG_PRICES_PATH", filepath.Join(dir, "prices.json"))
	t.Setenv("SPOOLSHELF_CATALOG_SYNTHESIS", "omit")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", "", "catalog", "check", "--data", data})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	text := out.String()
	assert.Contains(t, text, "records:        3")
	assert.Contains(t, text, "materials:      2")
	assert.Contains(t, text, "manufacturers:  2")
	assert.Contains(t, text, "defaulted:      2")
	assert.Contains(t, text, "without price:  1")
	assert.Contains(t, text, "without rating: 2")
}

func TestCatalogCheckFailsOnMissingDataset(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", "", "catalog", "check", "--data", filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
