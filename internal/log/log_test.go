package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(&filteringHandler{underlying: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
}

func TestFilteringHandlerSections(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf)

	logger.With("section", "desugar").Debug("hidden")
	assert.Empty(t, buf.String())

	logger.With("section", "analyzer.solve").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "section=analyzer.solve")
}

func TestFilteringHandlerWarningsAlwaysPass(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf)

	logger.With("section", "desugar").Warn("careful")
	assert.Contains(t, buf.String(), "careful")
}

func TestFilteringHandlerRecordAttr(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf)

	logger.Debug("per record", "section", "index")
	assert.Contains(t, buf.String(), "per record")
}

func TestSetLevel(t *testing.T) {
	defer SetLevel(slog.LevelWarn)

	SetLevel(slog.LevelDebug)
	assert.True(t, DefaultLogger.Enabled(context.Background(), slog.LevelDebug))
	SetLevel(slog.LevelError)
	assert.False(t, DefaultLogger.Enabled(context.Background(), slog.LevelWarn))
}
