package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupLevels(t *testing.T) {
	defer log.SetLevel(log.InfoLevel)

	Setup(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	Setup(false)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestNewWithWriterUsesPrefix(t *testing.T) {
	Setup(false)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "server")

	l.Info("ready")
	l.Debug("hidden")

	assert.Contains(t, buf.String(), "server")
	assert.Contains(t, buf.String(), "ready")
	assert.NotContains(t, buf.String(), "hidden")
}
