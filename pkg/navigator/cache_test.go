package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(pos int) Entry {
	return Entry{Position: pos, Question: choiceQuestion("q", 0)}
}

func TestCache_EmptyCursor(t *testing.T) {
	c := NewCache()
	assert.Equal(t, -1, c.Cursor())
	assert.Equal(t, 0, c.Frontier())

	_, ok := c.Current()
	assert.False(t, ok)

	_, err := c.Get(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCache_AppendAdvancesCursor(t *testing.T) {
	c := NewCache()
	for pos := 1; pos <= 3; pos++ {
		require.NoError(t, c.Append(entryAt(pos)))
		assert.Equal(t, pos-1, c.Cursor())
		assert.Equal(t, pos, c.Frontier())
	}
}

func TestCache_AppendTruncatesAfterCursor(t *testing.T) {
	c := NewCache()
	for pos := 1; pos <= 4; pos++ {
		require.NoError(t, c.Append(entryAt(pos)))
	}
	require.NoError(t, c.MoveCursor(1))

	replacement := entryAt(3)
	replacement.Question.Prompt = "a different branch"
	require.NoError(t, c.Append(replacement))

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Cursor())
	got, err := c.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "a different branch", got.Question.Prompt)
}

func TestCache_AppendRejectsGap(t *testing.T) {
	tests := []struct {
		name     string
		position int
	}{
		{"repeat", 2},
		{"gap", 4},
		{"zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache()
			require.NoError(t, c.Append(entryAt(1)))
			require.NoError(t, c.Append(entryAt(2)))

			err := c.Append(entryAt(tt.position))
			assert.ErrorIs(t, err, ErrNonContiguous)
			assert.ErrorIs(t, err, ErrOutOfRange)
			assert.Equal(t, 2, c.Len())
		})
	}
}

func TestCache_FirstEntryMayStartMidSession(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Append(entryAt(7)))
	require.NoError(t, c.Append(entryAt(8)))
	assert.Equal(t, 2, c.Len())
}

func TestCache_MoveCursorBounds(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Append(entryAt(1)))
	require.NoError(t, c.Append(entryAt(2)))

	assert.ErrorIs(t, c.MoveCursor(-1), ErrOutOfRange)
	assert.ErrorIs(t, c.MoveCursor(2), ErrOutOfRange)
	assert.Equal(t, 1, c.Cursor())

	require.NoError(t, c.MoveCursor(0))
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, 2, c.Len())
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Append(entryAt(1)))

	got, err := c.Get(0)
	require.NoError(t, err)
	got.Question.Options[0] = "mutated"
	got.SelectedOptions = append(got.SelectedOptions, 3)

	again, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Link", again.Question.Options[0])
	assert.Empty(t, again.SelectedOptions)
}

func TestCache_UpdateKeepsQuestion(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Append(entryAt(1)))

	require.NoError(t, c.update(0, func(e *Entry) {
		e.Question.Prompt = "rewritten"
		e.Answered = true
	}))

	got, _ := c.Get(0)
	assert.True(t, got.Answered)
	assert.NotEqual(t, "rewritten", got.Question.Prompt)
}

func TestCache_Reset(t *testing.T) {
	c := NewCache()
	require.NoError(t, c.Append(entryAt(1)))
	c.Reset()
	assert.Equal(t, -1, c.Cursor())
	assert.Equal(t, 0, c.Len())
}
