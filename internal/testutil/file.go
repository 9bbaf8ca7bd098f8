// Package testutil holds small test helpers shared across this
// module's package tests, adapted from go-guerrilla's internal/tests
// package (trimmed to the one helper that survives outside a running
// SMTP daemon: a scratch filename for stream.File tests).
package testutil

import (
	"errors"
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TemporaryFilename returns a name for a temporary file, removed
// automatically at test cleanup.
func TemporaryFilename(t *testing.T) string {
	name, cleanup := TemporaryFilenameCleanup(t)
	t.Cleanup(cleanup)
	return name
}

// TemporaryFilenameCleanup returns a filename and a function to remove
// it, for callers that need to control cleanup timing themselves.
func TemporaryFilenameCleanup(t *testing.T) (name string, cleanup func()) {
	f, err := ioutil.TempFile("", "gomime-")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	cleanup = func() {
		err := os.Remove(f.Name())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			assert.NoError(t, err)
		}
	}
	return f.Name(), cleanup
}
