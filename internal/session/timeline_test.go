package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockup/internal/domain"
)

func rec(prompt string) domain.GenerationRecord {
	return domain.GenerationRecord{ID: prompt, Prompt: prompt, Image: domain.ResultImage{Data: []byte(prompt)}}
}

func prompts(t *Timeline) []string {
	var out []string
	for _, r := range t.Records() {
		out = append(out, r.Prompt)
	}
	return out
}

func TestNewTimelineIsEmpty(t *testing.T) {
	tl := NewTimeline()
	assert.Equal(t, -1, tl.Cursor())
	assert.Equal(t, 0, tl.Len())
	_, ok := tl.Current()
	assert.False(t, ok)
	assert.False(t, tl.CanUndo())
	assert.False(t, tl.CanRedo())
	assert.Nil(t, tl.Records())
}

func TestAppendAfterUndoDiscardsFuture(t *testing.T) {
	tl := NewTimeline()
	tl.Append(rec("A"))
	tl.Append(rec("B"))
	tl.Append(rec("C"))
	require.True(t, tl.Undo())
	require.Equal(t, 1, tl.Cursor())

	tl.Append(rec("D"))

	assert.Equal(t, []string{"A", "B", "D"}, prompts(tl))
	assert.Equal(t, 2, tl.Cursor())
	assert.False(t, tl.CanRedo())
	cur, ok := tl.Current()
	require.True(t, ok)
	assert.Equal(t, "D", cur.Prompt)
}

func TestAppendDoesNotAliasEarlierSnapshots(t *testing.T) {
	tl := NewTimeline()
	tl.Append(rec("A"))
	tl.Append(rec("B"))
	snapshot := tl.Records()
	tl.Undo()
	tl.Append(rec("C"))
	assert.Equal(t, "B", snapshot[1].Prompt)
}

func TestUndoRedoBoundaries(t *testing.T) {
	tl := NewTimeline()
	assert.False(t, tl.Undo(), "undo on empty timeline")
	assert.False(t, tl.Redo(), "redo on empty timeline")
	assert.Equal(t, -1, tl.Cursor())

	tl.Append(rec("A"))
	assert.False(t, tl.Undo(), "undo at cursor 0 is a no-op")
	assert.Equal(t, 0, tl.Cursor())

	tl.Append(rec("B"))
	assert.False(t, tl.Redo(), "redo at last index is a no-op")
	assert.Equal(t, 1, tl.Cursor())

	assert.True(t, tl.Undo())
	assert.True(t, tl.CanRedo())
	assert.True(t, tl.Redo())
	assert.Equal(t, 1, tl.Cursor())
	assert.Equal(t, 2, tl.Len(), "undo/redo never change length")
}

func TestResetClearsHistory(t *testing.T) {
	tl := NewTimeline()
	tl.Append(rec("A"))
	tl.Append(rec("B"))
	tl.Reset()
	assert.Equal(t, -1, tl.Cursor())
	assert.Equal(t, 0, tl.Len())

	tl.Append(rec("C"))
	assert.Equal(t, []string{"C"}, prompts(tl))
	assert.Equal(t, 0, tl.Cursor())
}

func TestFind(t *testing.T) {
	tl := NewTimeline()
	tl.Append(rec("A"))
	tl.Append(rec("B"))
	got, ok := tl.Find("A")
	require.True(t, ok)
	assert.Equal(t, "A", got.Prompt)
	_, ok = tl.Find("missing")
	assert.False(t, ok)
}

func TestCursorStaysInRangeUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tl := NewTimeline()
	for i := 0; i < 5000; i++ {
		before := tl.Len()
		switch rng.Intn(4) {
		case 0:
			tl.Append(rec("r"))
			require.Equal(t, tl.Len()-1, tl.Cursor())
		case 1:
			tl.Undo()
			require.Equal(t, before, tl.Len())
		case 2:
			tl.Redo()
			require.Equal(t, before, tl.Len())
		case 3:
			if rng.Intn(20) == 0 {
				tl.Reset()
			}
		}
		require.GreaterOrEqual(t, tl.Cursor(), -1)
		require.Less(t, tl.Cursor(), tl.Len())
		if tl.Len() == 0 {
			require.Equal(t, -1, tl.Cursor())
		}
	}
}

