package model

import (
	"fmt"
	"slices"
)

// Entry is one stored record: the caller's text and its embedding.
//
// Entries are identified by their position in the entry store, a dense
// zero-based integer assigned at insertion that never changes.
type Entry struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Len returns the length of the text in bytes.
func (e Entry) Len() int { return len(e.Text) }

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	return Entry{Text: e.Text, Embedding: slices.Clone(e.Embedding)}
}

// String returns a short description of the entry.
func (e Entry) String() string {
	return fmt.Sprintf("Entry(len=%d, dim=%d)", e.Len(), len(e.Embedding))
}
