package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLockError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY: database busy"), true},
		{errors.New("database is locked (5)"), true},
		{errors.New("database table is locked"), true},
		{errors.New("UNIQUE constraint failed"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isLockError(tt.err), "%v", tt.err)
	}
}

func TestRetrier(t *testing.T) {
	r := retrier{attempts: 3, delay: time.Millisecond}

	t.Run("lock errors retried", func(t *testing.T) {
		calls := 0
		err := r.do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("other errors stop at once", func(t *testing.T) {
		calls := 0
		err := r.do(context.Background(), func() error {
			calls++
			return ErrNotFound
		})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("lock errors exhausted", func(t *testing.T) {
		calls := 0
		err := r.do(context.Background(), func() error {
			calls++
			return errors.New("database is locked")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database is locked")
		assert.Equal(t, 3, calls)
	})
}
