package queue

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceValidatesArguments(t *testing.T) {
	_, err := NewSource("redis://localhost:6379", "", nil, slog.Default())
	assert.Error(t, err)

	_, err = NewSource("not-a-url", "taskdeck:events", nil, slog.Default())
	assert.Error(t, err)

	source, err := NewSource("redis://localhost:6379/0", "taskdeck:events", nil, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "taskdeck:events", source.queue)
}
