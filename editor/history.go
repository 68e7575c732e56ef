// Package editor drives one authoring session: the undo/redo history of
// the content buffer, draft snapshots persisted through an injected
// key-value store, debounced auto-save, preview, and submission to the
// post repository.
package editor

// DefaultHistoryLimit bounds the undo stack. The editor keeps the most
// recent committed buffer states; older entries are evicted.
const DefaultHistoryLimit = 200

// History is the undo/redo log of one session's content buffer. Pushing
// while the cursor sits behind the tail discards the forward branch, so
// redo is only available until the next edit.
type History struct {
	entries []string
	cursor  int
	limit   int
}

// NewHistory creates a History seeded with the initial buffer state.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}, limit: DefaultHistoryLimit}
}

// Push records a committed buffer state as the new tail.
func (h *History) Push(text string) {
	h.entries = append(h.entries[:h.cursor+1], text)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries) - 1
}

// Undo moves the cursor back one state and returns it.
func (h *History) Undo() (string, bool) {
	if h.cursor == 0 {
		return "", false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo moves the cursor forward one state and returns it.
func (h *History) Redo() (string, bool) {
	if h.cursor >= len(h.entries)-1 {
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Current returns the state under the cursor.
func (h *History) Current() string {
	return h.entries[h.cursor]
}

// CanUndo reports whether an earlier state exists.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether a later state exists.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }
