package grid

import (
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryCapacity is the number of undo entries kept when no capacity
// option is given.
const DefaultHistoryCapacity = 100

// Entry is one recorded edit.
type Entry struct {
	ID       uuid.UUID
	Change   Change
	Recorded time.Time
}

// EntryInfo describes an entry without exposing its payload.
type EntryInfo struct {
	ID          uuid.UUID
	Kind        ChangeKind
	Description string
	Recorded    time.Time
}

func (e Entry) info() EntryInfo {
	return EntryInfo{
		ID:          e.ID,
		Kind:        e.Change.Kind(),
		Description: e.Change.Describe(),
		Recorded:    e.Recorded,
	}
}

// ring is a fixed-capacity LIFO that overwrites its oldest entry when full.
type ring struct {
	entries []Entry
	head    int // index of the oldest entry
	size    int
}

func newRing(capacity int) *ring {
	return &ring{entries: make([]Entry, capacity)}
}

// push adds e as the newest entry. When the ring is full the oldest entry is
// overwritten and returned with evicted set.
func (r *ring) push(e Entry) (old Entry, evicted bool) {
	capacity := len(r.entries)
	if r.size == capacity {
		old = r.entries[r.head]
		r.entries[r.head] = e
		r.head = (r.head + 1) % capacity

		return old, true
	}

	r.entries[(r.head+r.size)%capacity] = e
	r.size++

	return Entry{}, false
}

// pop removes and returns the newest entry.
func (r *ring) pop() (Entry, bool) {
	if r.size == 0 {
		return Entry{}, false
	}

	idx := (r.head + r.size - 1) % len(r.entries)
	e := r.entries[idx]
	r.entries[idx] = Entry{}
	r.size--

	return e, true
}

// at returns the i-th entry counting from the oldest.
func (r *ring) at(i int) Entry {
	return r.entries[(r.head+i)%len(r.entries)]
}

func (r *ring) len() int {
	return r.size
}

func (r *ring) clear() {
	clear(r.entries)
	r.head = 0
	r.size = 0
}

// history pairs the bounded undo ring with an unbounded redo stack.
type history struct {
	undo *ring
	redo []Entry
}

func newHistory(capacity int) *history {
	return &history{undo: newRing(capacity)}
}

func newEntry(ch Change) Entry {
	return Entry{
		ID:       uuid.New(),
		Change:   ch,
		Recorded: time.Now(),
	}
}

func (h *history) popRedo() (Entry, bool) {
	n := len(h.redo)
	if n == 0 {
		return Entry{}, false
	}

	e := h.redo[n-1]
	h.redo[n-1] = Entry{}
	h.redo = h.redo[:n-1]

	return e, true
}

func (h *history) pushRedo(e Entry) {
	h.redo = append(h.redo, e)
}

func (h *history) undoInfo() []EntryInfo {
	out := make([]EntryInfo, h.undo.len())
	for i := range out {
		out[i] = h.undo.at(i).info()
	}

	return out
}

func (h *history) redoInfo() []EntryInfo {
	out := make([]EntryInfo, len(h.redo))
	for i, e := range h.redo {
		out[i] = e.info()
	}

	return out
}
