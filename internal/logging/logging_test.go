package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopboxdev/fpp-tailscale/internal/logging"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(&buf, logging.Options{Format: "json"})
	require.NoError(t, err)

	l.Info("connect", "exit", 0)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "connect", entry["msg"])
	assert.EqualValues(t, 0, entry["exit"])
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(&buf, logging.Options{Level: "warn"})
	require.NoError(t, err)
	l.Info("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	l, err = logging.New(&buf, logging.Options{Level: "warn", Verbose: true})
	require.NoError(t, err)
	l.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestBadOptions(t *testing.T) {
	_, err := logging.New(nil, logging.Options{Level: "loud"})
	assert.Error(t, err)
	_, err = logging.New(nil, logging.Options{Format: "xml"})
	assert.Error(t, err)
}
