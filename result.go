package lshdb

import (
	"sync"

	"github.com/hupe1980/lshdb/model"
)

// ResultEntry is one kept candidate of a query.
type ResultEntry struct {
	// Position of the entry in the index.
	Position int

	// Entry is a copy owned by the caller.
	Entry model.Entry

	// Score is the similarity between the query and Entry.Embedding.
	Score float32
}

// QueryResult holds the kept candidates of a query, best first.
//
// Results is backed by pooled storage; call Release when done. Results
// must not be retained after Release.
type QueryResult struct {
	// Results are the kept candidates, sorted by descending score.
	Results []ResultEntry

	// Total is the size of the matched bucket before truncation.
	Total int

	buf *[]ResultEntry
}

var resultPool = sync.Pool{
	New: func() any {
		s := make([]ResultEntry, 0, DefaultTopN)
		return &s
	},
}

func newQueryResult() *QueryResult {
	buf := resultPool.Get().(*[]ResultEntry)
	return &QueryResult{
		Results: (*buf)[:0],
		buf:     buf,
	}
}

// Len returns the number of kept results.
func (r *QueryResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Results)
}

// Release returns the result storage to the pool. Calling it more than once
// is a no-op.
func (r *QueryResult) Release() {
	if r == nil || r.buf == nil {
		return
	}
	clear(r.Results[:cap(r.Results)])
	*r.buf = r.Results[:0]
	resultPool.Put(r.buf)
	r.buf = nil
	r.Results = nil
	r.Total = 0
}
