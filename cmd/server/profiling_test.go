package main

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartProfilerDisabled(t *testing.T) {
	stop, err := startProfiler(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NotNil(t, stop)
	assert.NoError(t, stop())
}

func TestPyroscopeLogger(t *testing.T) {
	var buf bytes.Buffer
	l := pyroscopeLogger{log: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Infof("uploading %d profiles", 3)
	l.Errorf("upload failed: %s", "timeout")

	out := buf.String()
	assert.Contains(t, out, "uploading 3 profiles")
	assert.Contains(t, out, "upload failed: timeout")
	assert.Contains(t, out, "component=pyroscope")
}
