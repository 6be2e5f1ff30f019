package python

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlots(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("blocks when full and honours the context", func(t *testing.T) {
		slots := NewSlots(1, logger)

		release, err := slots.Acquire(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), slots.InUse())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = slots.Acquire(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		release()
		assert.Equal(t, int64(0), slots.InUse())

		release2, err := slots.Acquire(context.Background())
		require.NoError(t, err)
		release2()
	})

	t.Run("release is idempotent", func(t *testing.T) {
		slots := NewSlots(2, logger)

		release, err := slots.Acquire(context.Background())
		require.NoError(t, err)
		release()
		release()

		assert.Equal(t, int64(0), slots.InUse())
		assert.Equal(t, int64(2), slots.Size())
	})
}
