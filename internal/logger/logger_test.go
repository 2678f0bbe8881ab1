package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "DEBUG test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Section("Pipeline")

	assert.Zero(t, buf.Len(), "expected no output when verbose is disabled")
}

func TestDebugw_Fields(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debugw("parsed", "format", "pdf", "pages", 3)

	assert.Contains(t, buf.String(), "DEBUG parsed")
	assert.Contains(t, buf.String(), `"format": "pdf"`)
	assert.Contains(t, buf.String(), `"pages": 3`)
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Normalise")

	assert.Equal(t, "INFO === Normalise ===\n", buf.String())
}

func TestWarnAndError_AlwaysWritten(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("slow fetch %d", 3)
	Error("failed")

	assert.Contains(t, buf.String(), "WARN slow fetch 3\n")
	assert.Contains(t, buf.String(), "ERROR failed\n")
}
