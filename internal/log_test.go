package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel(" WARN "))
	assert.Equal(t, LogLevelDebug, ParseLogLevel("Debug"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_Filtering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LogLevelWarn)

	logger.Info("[Pipeline] hidden %d", 1)
	logger.Debug("[Pipeline] hidden %d", 2)
	assert.Empty(t, buf.String())

	logger.Warn("[Pipeline] group %q dropped", "_meta")
	assert.Contains(t, buf.String(), `[Pipeline] group "_meta" dropped`)
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, LogLevelError)
	assert.Equal(t, LogLevelError, logger.GetLevel())

	logger.SetLevel(LogLevelTrace)
	assert.Equal(t, LogLevelTrace, logger.GetLevel())

	logger.Trace("[SheetReader] row %d", 7)
	assert.Contains(t, buf.String(), "[TRACE] [SheetReader] row 7")
}
