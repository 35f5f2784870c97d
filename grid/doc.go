// Package grid holds the TextGrid domain model and its edit engine.
//
// A Document spans [XMin, XMax] and owns an ordered list of named tiers. An
// interval tier partitions its span into contiguous labeled intervals; a
// point tier (Praat's "TextTier") carries time-stamped marks.
//
// # Editing
//
// Every mutation goes through a Document method. A successful edit records one
// Change in a bounded undo history and clears the redo history; a failed edit
// leaves the document untouched. Undo applies the exact inverse of the newest
// Change and Redo re-runs it through the original edit path:
//
//	doc, _ := grid.New(0, 2)
//	_ = doc.AddTier(grid.NewIntervalTier("words", 0, 2))
//	_, _ = doc.AddInterval("words", grid.Interval{XMin: 0, XMax: 2, Text: "hello"})
//	_ = doc.SplitInterval("words", 0, 1)
//	_ = doc.Undo() // back to a single interval
//
// The undo history keeps DefaultHistoryCapacity entries unless
// WithHistoryCapacity says otherwise; the oldest entry is dropped first.
//
// # Validation
//
// Edits keep local preconditions only. Validate checks the document-wide
// invariants; the top-level textgrid.Write calls it before encoding.
package grid
