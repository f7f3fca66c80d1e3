package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey string

func TestCombineContext(t *testing.T) {
	const key ctxKey = "target"
	const value = "tab-1"

	t.Run("InheritsValuesFromPrimary", func(t *testing.T) {
		primary := context.WithValue(context.Background(), key, value)

		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		assert.Equal(t, value, combined.Value(key))
		assert.NoError(t, combined.Err())
	})

	t.Run("CanceledByPrimary", func(t *testing.T) {
		primary, cancelPrimary := context.WithCancel(context.Background())

		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		cancelPrimary()
		assert.Eventually(t, func() bool { return combined.Err() != nil },
			100*time.Millisecond, 5*time.Millisecond,
			"combined context should follow the primary's cancellation")
	})

	t.Run("CanceledBySecondary", func(t *testing.T) {
		secondary, cancelSecondary := context.WithCancel(context.Background())

		combined, cancel := CombineContext(context.Background(), secondary)
		defer cancel()

		cancelSecondary()
		assert.Eventually(t, func() bool { return combined.Err() != nil },
			100*time.Millisecond, 5*time.Millisecond,
			"combined context should follow the secondary's cancellation")
	})

	t.Run("DeadlineFromPrimary", func(t *testing.T) {
		deadline := time.Now().Add(time.Minute)
		primary, cancelPrimary := context.WithDeadline(context.Background(), deadline)
		defer cancelPrimary()

		combined, cancel := CombineContext(primary, context.Background())
		defer cancel()

		got, ok := combined.Deadline()
		require.True(t, ok, "combined context should carry the primary's deadline")
		assert.WithinDuration(t, deadline, got, time.Millisecond)
	})
}

func TestDetachSurvivesParentCancellation(t *testing.T) {
	const key ctxKey = "target"

	parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	withValue := context.WithValue(parent, key, "tab-1")

	detached := Detach(withValue)
	cancel()

	assert.Equal(t, "tab-1", detached.Value(key), "values must survive detachment")
	assert.NoError(t, detached.Err())
	assert.Nil(t, detached.Done())
	_, hasDeadline := detached.Deadline()
	assert.False(t, hasDeadline, "detached context must not inherit the deadline")
}
