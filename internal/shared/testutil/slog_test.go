package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	logger, h := NewTestLogger(nil)

	logger.With(slog.String("component", "test")).Info("first message", slog.Int("n", 1))
	logger.Warn("second message")

	records := h.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "first message", records[0].Message)
	assert.Equal(t, "test", records[0].Attrs["component"])
	assert.Equal(t, int64(1), records[0].Attrs["n"])
	assert.NotContains(t, records[1].Attrs, "component")

	assert.True(t, h.ContainsMessage("second"))
	assert.False(t, h.ContainsMessage("third"))
	assert.Len(t, h.RecordsByLevel(slog.LevelWarn), 1)

	r, ok := h.Find("first")
	require.True(t, ok)
	assert.Equal(t, slog.LevelInfo, r.Level)
}
