package history

import (
	"testing"

	"github.com/mesh-intelligence/apiconf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	X int `json:"x"`
}

func current(t *testing.T, h *History[counter]) counter {
	t.Helper()
	v, ok := h.Current()
	require.True(t, ok, "current entry is a tombstone")
	return v
}

func TestNewHistory(t *testing.T) {
	h := New(counter{X: 1})

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, counter{X: 1}, current(t, h))
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, ok := h.Previous()
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	t.Run("appends and advances", func(t *testing.T) {
		h := New(counter{X: 1})
		require.NoError(t, h.Update(types.Patch{"x": 2}))

		assert.Equal(t, 2, h.Len())
		assert.Equal(t, counter{X: 2}, current(t, h))
		prev, ok := h.Previous()
		require.True(t, ok)
		assert.Equal(t, counter{X: 1}, prev)
		assert.True(t, h.CanUndo())
		assert.False(t, h.CanRedo())
	})

	t.Run("equal value is a no-op", func(t *testing.T) {
		h := New(counter{X: 1})
		require.NoError(t, h.Update(types.Patch{"x": 1}))
		require.NoError(t, h.Update(types.Patch{}))
		assert.Equal(t, 1, h.Len())
	})

	t.Run("no-op keeps the redo future", func(t *testing.T) {
		h := New(counter{X: 1})
		require.NoError(t, h.Update(types.Patch{"x": 2}))
		h.Undo()
		require.NoError(t, h.Update(types.Patch{"x": 1}))
		assert.True(t, h.CanRedo())
		assert.Equal(t, 2, h.Len())
	})

	t.Run("nil patch is rejected without change", func(t *testing.T) {
		h := New(counter{X: 1})
		err := h.Update(nil)
		assert.ErrorIs(t, err, types.ErrInvalidArgument)
		assert.Equal(t, 1, h.Len())
		assert.Equal(t, counter{X: 1}, current(t, h))
	})

	t.Run("over a tombstone merges into an empty value", func(t *testing.T) {
		h := New(counter{X: 5})
		h.MarkDeleted()
		require.NoError(t, h.Update(types.Patch{}))

		assert.Equal(t, 3, h.Len())
		assert.Equal(t, counter{}, current(t, h))
	})
}

func TestBranchTruncation(t *testing.T) {
	h := New(counter{X: 1})
	require.NoError(t, h.Update(types.Patch{"x": 2}))
	require.NoError(t, h.Update(types.Patch{"x": 3}))

	_, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 3, h.Len(), "undo does not truncate")
	assert.True(t, h.CanRedo())

	require.NoError(t, h.Update(types.Patch{"x": 4}))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 3, h.Len())

	var xs []int
	for i := 0; i < h.Len(); i++ {
		e, ok := h.At(i)
		require.True(t, ok)
		v, live := e.Value()
		require.True(t, live)
		xs = append(xs, v.X)
	}
	assert.Equal(t, []int{1, 2, 4}, xs)

	_, ok = h.At(h.Len())
	assert.False(t, ok)
	_, ok = h.At(-1)
	assert.False(t, ok)
}

func TestMarkDeleted(t *testing.T) {
	h := New(counter{X: 1})
	h.MarkDeleted()

	_, ok := h.Current()
	assert.False(t, ok)
	assert.True(t, h.CurrentEntry().IsTombstone())
	assert.Equal(t, 2, h.Len())

	h.MarkDeleted()
	assert.Equal(t, 2, h.Len(), "deleting twice appends once")

	prev, ok := h.Previous()
	require.True(t, ok)
	assert.Equal(t, counter{X: 1}, prev)
}

func TestMarkDeletedTruncates(t *testing.T) {
	h := New(counter{X: 1})
	require.NoError(t, h.Update(types.Patch{"x": 2}))
	h.Undo()

	h.MarkDeleted()
	assert.Equal(t, 2, h.Len())
	assert.False(t, h.CanRedo())
	e, _ := h.At(1)
	assert.True(t, e.IsTombstone())
}

func TestUndoRedo(t *testing.T) {
	h := New(counter{X: 1})

	_, ok := h.Undo()
	assert.False(t, ok, "nothing to undo")
	_, ok = h.Redo()
	assert.False(t, ok, "nothing to redo")

	require.NoError(t, h.Update(types.Patch{"x": 2}))
	h.MarkDeleted()

	e, ok := h.Undo()
	require.True(t, ok)
	v, live := e.Value()
	require.True(t, live)
	assert.Equal(t, counter{X: 2}, v)

	e, ok = h.Redo()
	require.True(t, ok)
	assert.True(t, e.IsTombstone(), "redo returns the tombstone, distinguishable from failure")

	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestFirstEntryIsPermanent(t *testing.T) {
	seed := map[string]any{"x": 1}
	h := New(seed)
	seed["x"] = 99

	for i := 2; i < 6; i++ {
		require.NoError(t, h.Update(types.Patch{"x": i}))
		if i%2 == 0 {
			h.Undo()
		}
		h.MarkDeleted()
	}
	for h.CanUndo() {
		h.Undo()
	}

	first, ok := h.At(0)
	require.True(t, ok)
	v, live := first.Value()
	require.True(t, live)
	assert.Equal(t, map[string]any{"x": 1}, v)
	assert.GreaterOrEqual(t, h.Len(), 1)
}
