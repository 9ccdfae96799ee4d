package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes to dir for the duration of the test, mirroring t.Chdir
// (unavailable before Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func resetConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfgFile = ""
	addr = ":5050"
	httpAddr = ":8080"
}

func TestInitConfigEnvWithoutFile(t *testing.T) {
	resetConfig(t)
	chdir(t, t.TempDir())
	t.Setenv("GORC_LISTEN_ADDR", ":7777")
	t.Setenv("GORC_HTTP_ADDR", ":9090")

	initConfig()

	assert.Equal(t, ":7777", addr)
	assert.Equal(t, ":9090", httpAddr)
}

func TestInitConfigFile(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "gorc.yaml"),
		[]byte("listen_addr: \":6060\"\nhttp_addr: \"\"\n"),
		0o644))

	initConfig()

	assert.Equal(t, ":6060", addr)
	assert.Equal(t, "", httpAddr, "empty http_addr in the file disables the gateway")
}

func TestInitConfigEnvBeatsFile(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "gorc.yaml"),
		[]byte("listen_addr: \":6060\"\n"),
		0o644))
	t.Setenv("GORC_LISTEN_ADDR", ":7777")

	initConfig()

	assert.Equal(t, ":7777", addr)
}
