package alerts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPacer(t *testing.T) {
	t.Run("non-positive interval disables pacing", func(t *testing.T) {
		assert.IsType(t, NopPacer{}, NewPacer(0))
		assert.IsType(t, NopPacer{}, NewPacer(-time.Second))
	})

	t.Run("first wait is immediate, second is delayed", func(t *testing.T) {
		p := NewPacer(50 * time.Millisecond)

		start := time.Now()
		require.NoError(t, p.Wait(context.Background()))
		assert.Less(t, time.Since(start), 25*time.Millisecond)

		require.NoError(t, p.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("cancelled context interrupts the wait", func(t *testing.T) {
		p := NewPacer(time.Hour)
		require.NoError(t, p.Wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, p.Wait(ctx))
	})
}

func TestNopPacer(t *testing.T) {
	assert.NoError(t, NopPacer{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NopPacer{}.Wait(ctx))
}
