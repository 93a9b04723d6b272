package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datedPath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("ferry-%s.log", time.Now().Format("2006-01-02")))
}

func TestTeeToDatedFileCreatesDailyFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, teeToDatedFileIn(dir))
	defer CloseTee()

	Info("first line")
	Info("second line")

	data, err := os.ReadFile(datedPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "first line")
	assert.Contains(t, string(data), "second line")
}

func TestTeeToDatedFileAppends(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, teeToDatedFileIn(dir))
	Info("from first run")
	CloseTee()

	require.NoError(t, teeToDatedFileIn(dir))
	Info("from second run")
	CloseTee()

	data, err := os.ReadFile(datedPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "from first run")
	assert.Contains(t, string(data), "from second run")
}

// The tee must stay active until CloseTee so error lines logged while a
// failing run unwinds still reach the dated file.
func TestTeeCapturesLinesLoggedUntilClosed(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, teeToDatedFileIn(dir))
	Info("inside the run: stage failed")
	Errorf("final error: %v", fmt.Errorf("provision failed"))
	CloseTee()

	Info("after the tee is gone")

	data, err := os.ReadFile(datedPath(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "inside the run: stage failed")
	assert.Contains(t, string(data), "final error: provision failed")
	assert.NotContains(t, string(data), "after the tee is gone")
}

func TestCloseTeeWithoutActiveTee(t *testing.T) {
	CloseTee()
	CloseTee()
}
