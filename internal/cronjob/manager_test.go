package cronjob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Register(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Register("sweep", "@daily", func() {}))
	assert.Equal(t, []string{"sweep"}, m.Jobs())

	// Re-registering the same name replaces the schedule instead of stacking.
	require.NoError(t, m.Register("sweep", "@hourly", func() {}))
	assert.Len(t, m.Jobs(), 1)
}

func TestManager_Register_InvalidSpec(t *testing.T) {
	m := NewManager()

	err := m.Register("sweep", "not a cron spec", func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sweep")
	assert.Empty(t, m.Jobs())
}

func TestManager_StartStop(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Register("sweep", "@daily", func() {}))

	m.Start()
	assert.NotPanics(t, m.Stop)
}
