package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capturedLogger(level LogLevel) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	l := NewLogger(level)
	l.infoLogger = log.New(&out, "", 0)
	l.errorLogger = log.New(&errOut, "", 0)
	return l, &out, &errOut
}

func TestLevelFiltering(t *testing.T) {
	l, out, _ := capturedLogger(WARN)

	l.Debug("should be dropped")
	l.Info("should be dropped")
	assert.Empty(t, out.String())

	l.Warn("should appear")
	assert.Contains(t, out.String(), "[WARN]")
	assert.Contains(t, out.String(), "should appear")
}

func TestErrorsGoToErrorWriter(t *testing.T) {
	l, out, errOut := capturedLogger(DEBUG)

	l.Info("to stdout")
	l.Error("to stderr")

	assert.Contains(t, out.String(), "to stdout")
	assert.NotContains(t, out.String(), "to stderr")
	assert.Contains(t, errOut.String(), "[ERROR]")
	assert.Contains(t, errOut.String(), "to stderr")
}

func TestCallerInformation(t *testing.T) {
	l, out, _ := capturedLogger(DEBUG)
	l.Info("where am I")
	assert.Contains(t, out.String(), "logger_test.go")
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "", formatArgs())
	assert.Equal(t, "1.50", formatArgs(1.5))
	assert.Equal(t, "42", formatArgs(42))
	assert.Equal(t, "true", formatArgs(true))
	assert.Equal(t, "boom", formatArgs(errors.New("boom")))
	assert.Equal(t, "nil", formatArgs(nil))
	assert.Equal(t, "a 2 3.00", formatArgs("a", 2, 3.0))
}

func TestSetLevel(t *testing.T) {
	l, out, _ := capturedLogger(ERROR)
	l.Info("dropped")
	assert.Empty(t, out.String())

	l.SetLevel(DEBUG)
	l.Info("kept")
	assert.Contains(t, out.String(), "kept")
}
