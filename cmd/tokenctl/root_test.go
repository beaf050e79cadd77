//go:build !integration

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIssueRefusesMemoryStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := []byte(`
admin:
  password: pw
  jwt_secret: s
store:
  driver: memory
ai:
  text_provider: noop
`)
	require.NoError(t, os.WriteFile(path, cfg, 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"issue", "--config", path, "--limit", "3"})
	err := rootCmd.Execute()
	require.ErrorIs(t, err, errMemoryStore)
	require.Empty(t, out.String())
}

func TestListMissingConfig(t *testing.T) {
	rootCmd.SetArgs([]string{"list", "--config", filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, rootCmd.Execute())
}
