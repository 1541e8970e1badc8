package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSplitsLevels(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "device-inventory.log")

	h, err := open("warn", &stderr, path)
	require.NoError(t, err)

	h.Logger.Debug("probing 10.0.0.5:80")
	h.Logger.Warn("probe of 10.0.0.6:80 failed")
	require.NoError(t, h.Close(nil))

	assert.NotContains(t, stderr.String(), "probing 10.0.0.5:80")
	assert.Contains(t, stderr.String(), "probe of 10.0.0.6:80 failed")
	assert.NotContains(t, stderr.String(), "Full log stored in")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "probing 10.0.0.5:80")
	assert.Contains(t, string(data), "probe of 10.0.0.6:80 failed")
}

func TestClosePrintsLocationOnFailure(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "device-inventory.log")

	h, err := open("info", &stderr, path)
	require.NoError(t, err)
	assert.Equal(t, path, h.Path())

	require.NoError(t, h.Close(errors.New("conflicting architecture")))
	assert.Contains(t, stderr.String(), "Full log stored in "+path)

	require.NoError(t, h.Close(nil), "closing twice is a no-op")
}

func TestOpenRejectsUnknownLevel(t *testing.T) {
	_, err := open("chatty", &bytes.Buffer{}, "")
	assert.Error(t, err)
}

func TestOpenWithoutFile(t *testing.T) {
	var stderr bytes.Buffer
	h, err := open("error", &stderr, filepath.Join(t.TempDir(), "missing", "x.log"))
	require.NoError(t, err)
	assert.Empty(t, h.Path())
	assert.NoError(t, h.Close(errors.New("boom")))
}
