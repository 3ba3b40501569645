package runtime

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLogger(t *testing.T) {
	logger, err := CreateLogger("debug")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.Level)
}

func TestLoggerNotCreatedWithInvalidLevel(t *testing.T) {
	_, err := CreateLogger("debug1234")
	assert.Error(t, err)
}

func TestDefaultWarnLevel(t *testing.T) {
	logger, err := CreateLogger("")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.Level)
}

func TestCreateLoggerWithOutput(t *testing.T) {
	var out bytes.Buffer
	logger, err := CreateLoggerWithOutput("info", &out)
	require.NoError(t, err)
	logger.WithField("pid", 42).Info("started")
	logger.Debug("hidden")
	assert.Contains(t, out.String(), "pid=42")
	assert.Contains(t, out.String(), "started")
	assert.NotContains(t, out.String(), "hidden")
}

func TestDebugPattern(t *testing.T) {
	assert.Nil(t, debugPattern(""))

	p := debugPattern("system,io*")
	require.NotNil(t, p)
	assert.True(t, p.MatchString("system"))
	assert.True(t, p.MatchString("ioext"))
	assert.False(t, p.MatchString("config"))

	assert.True(t, debugPattern("*").MatchString("anything"))
}
