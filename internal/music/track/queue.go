package track

import "math/rand"

// Queue is an ordered list of pending tracks. The front is the next to play.
// Queue is not safe for concurrent use; the registry lock guards every queue
// it owns.
type Queue struct {
	items []Track
}

// PushBack appends a track to the end of the queue.
func (q *Queue) PushBack(t Track) {
	q.items = append(q.items, t)
}

// PushFront places a track at position 0, displacing existing entries.
func (q *Queue) PushFront(t Track) {
	q.items = append([]Track{t}, q.items...)
}

// Append appends all tracks to the end of the queue, preserving order.
func (q *Queue) Append(ts []Track) {
	q.items = append(q.items, ts...)
}

// PopFront removes and returns the front track.
func (q *Queue) PopFront() (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.items = nil
}

// Shuffle permutes the queue uniformly at random.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.items)
}

// Front returns a copy of the first n tracks (fewer if the queue is shorter).
func (q *Queue) Front(n int) []Track {
	if n > len(q.items) {
		n = len(q.items)
	}
	out := make([]Track, n)
	copy(out, q.items[:n])
	return out
}

// DropFront discards the first k-1 tracks so that the k-th displayed track
// (one-based) becomes the front. Returns false without mutating the queue
// when k is out of range.
func (q *Queue) DropFront(k int) bool {
	if k < 1 || k > len(q.items) {
		return false
	}
	q.items = q.items[k-1:]
	return true
}
