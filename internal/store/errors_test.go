package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/tasklist/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, store.IsNotFoundError(store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrTaskNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("wrapped: %w", store.ErrScheduleNotFound)))
	assert.False(t, store.IsNotFoundError(store.ErrStorage))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestIsStorageError(t *testing.T) {
	err := store.NewStoreError("task", "insert", "database unavailable", store.ErrStorage)
	assert.True(t, store.IsStorageError(err))
	assert.False(t, store.IsStorageError(store.ErrTaskNotFound))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("disk I/O error")

	tests := []struct {
		name string
		err  *store.StoreError
		want string
	}{
		{
			name: "with wrapped error",
			err:  store.NewStoreError("task", "update", "exec failed", cause),
			want: "update operation on task failed: exec failed: disk I/O error",
		},
		{
			name: "without wrapped error",
			err:  store.NewStoreError("task", "delete", "no rows", nil),
			want: "delete operation on task failed: no rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}

	wrapped := store.NewStoreError("task", "update", "exec failed", cause)
	assert.ErrorIs(t, wrapped, cause)

	var se *store.StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", wrapped), &se))
	assert.Equal(t, "task", se.Entity)
}
