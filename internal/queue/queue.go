// Package queue implements the prioritized frontier of candidate URLs
// for a single research run.
package queue

import (
	"container/heap"
	"sync"

	"github.com/sells-group/web-agent/internal/model"
)

// SourceQueue is an ordered set of candidates awaiting a visit. URLs are
// deduplicated by their normalized form against both the queue and the
// visited set, so no URL is ever dispatched twice in one run. Pop marks
// the returned URL as visited atomically with the removal.
type SourceQueue struct {
	mu      sync.Mutex
	items   candidateHeap
	seq     int
	queued  map[string]bool
	visited map[string]bool
}

// New creates an empty SourceQueue.
func New() *SourceQueue {
	return &SourceQueue{
		queued:  make(map[string]bool),
		visited: make(map[string]bool),
	}
}

// Enqueue inserts a candidate unless its normalized URL is already queued,
// already visited, or unparseable. Returns true if the candidate was added.
func (q *SourceQueue) Enqueue(c model.Candidate) bool {
	key, err := model.NormalizeURL(c.URL)
	if err != nil {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.queued[key] || q.visited[key] {
		return false
	}
	q.queued[key] = true
	c.URL = key
	q.seq++
	heap.Push(&q.items, &item{cand: c, seq: q.seq})
	return true
}

// Pop removes and returns the highest-priority candidate and marks its
// URL visited. Ties break toward lower source depth, then insertion
// order. Returns false when the queue is empty.
func (q *SourceQueue) Pop() (model.Candidate, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.items.Len() == 0 {
		return model.Candidate{}, false
	}
	it := heap.Pop(&q.items).(*item)
	delete(q.queued, it.cand.URL)
	q.visited[it.cand.URL] = true
	return it.cand, true
}

// Len reports the number of queued candidates.
func (q *SourceQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Visited reports whether the URL (in any equivalent form) has already
// been popped for a fetch attempt.
func (q *SourceQueue) Visited(rawURL string) bool {
	key, err := model.NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.visited[key]
}

type item struct {
	cand  model.Candidate
	seq   int
	index int
}

type candidateHeap []*item

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.cand.PriorityScore != b.cand.PriorityScore {
		return a.cand.PriorityScore > b.cand.PriorityScore
	}
	if a.cand.SourceDepth != b.cand.SourceDepth {
		return a.cand.SourceDepth < b.cand.SourceDepth
	}
	return a.seq < b.seq
}

func (h candidateHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *candidateHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
