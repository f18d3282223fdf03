package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
)

type failingCloser struct{}

func (failingCloser) Close() error {
	return errors.New("database is locked")
}

func TestCloseLoggedRecordsFailure(t *testing.T) {
	closeLogged("close sqlite store", failingCloser{})()

	entries := logger.Entries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, "cmd", last.Tag)
	assert.Equal(t, "close sqlite store: database is locked", last.Detail)
}

func TestIDCodeWritesToCommandOutput(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		logger.SetEcho(nil)
	})

	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs([]string{"idcode", "--backend", "sim", "--verbose", "--store-path", t.TempDir()})
	require.NoError(t, rootCmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Handshake: ")
	assert.Contains(t, output, "0x0BC12477")
}

func TestFlagsOverrideEnvFileBeforeValidation(t *testing.T) {
	env := filepath.Join(t.TempDir(), "swd.env")
	require.NoError(t, os.WriteFile(env, []byte("SWD_CLK=GPIO3\n"), 0o644))

	output, err := execute(t, "idcode", "--backend", "sim", "--env", env, "--dio", "GPIO4", "--store-path", t.TempDir())
	require.NoError(t, err, output)
	assert.True(t, strings.Contains(output, "SWDIO=GPIO4 SWCLK=GPIO3"), output)

	_, err = execute(t, "idcode", "--backend", "sim", "--env", env, "--store-path", t.TempDir())
	assert.Error(t, err)
}
