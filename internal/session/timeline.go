package session

import "mockup/internal/domain"

// Timeline is the generation history with an undo/redo cursor. The cursor is
// always -1 (no result yet) or a valid index into records.
//
// Timeline is not safe for concurrent use; the studio controller owns it.
type Timeline struct {
	records []domain.GenerationRecord
	cursor  int
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{cursor: -1}
}

// Reset clears every record and moves the cursor to -1.
func (t *Timeline) Reset() {
	t.records = nil
	t.cursor = -1
}

// Append drops everything after the cursor, pushes rec and points the cursor
// at it. This is the only operation that changes Len.
func (t *Timeline) Append(rec domain.GenerationRecord) {
	kept := make([]domain.GenerationRecord, t.cursor+1, t.cursor+2)
	copy(kept, t.records[:t.cursor+1])
	t.records = append(kept, rec)
	t.cursor = len(t.records) - 1
}

// Undo moves the cursor back one step. It is a no-op at index 0 or below.
func (t *Timeline) Undo() bool {
	if !t.CanUndo() {
		return false
	}
	t.cursor--
	return true
}

// Redo moves the cursor forward one step. It is a no-op at the last record.
func (t *Timeline) Redo() bool {
	if !t.CanRedo() {
		return false
	}
	t.cursor++
	return true
}

// Current returns the record under the cursor; ok is false when empty.
func (t *Timeline) Current() (domain.GenerationRecord, bool) {
	if t.cursor < 0 {
		return domain.GenerationRecord{}, false
	}
	return t.records[t.cursor], true
}

func (t *Timeline) CanUndo() bool { return t.cursor > 0 }

func (t *Timeline) CanRedo() bool { return t.cursor < len(t.records)-1 }

func (t *Timeline) Cursor() int { return t.cursor }

func (t *Timeline) Len() int { return len(t.records) }

// Records returns a copy of the history in order.
func (t *Timeline) Records() []domain.GenerationRecord {
	if len(t.records) == 0 {
		return nil
	}
	out := make([]domain.GenerationRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Find returns the record with the given id.
func (t *Timeline) Find(id string) (domain.GenerationRecord, bool) {
	for _, rec := range t.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return domain.GenerationRecord{}, false
}
