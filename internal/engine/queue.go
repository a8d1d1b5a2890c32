// SPDX-License-Identifier: GPL-3.0

package engine

// eventQueue is the pending-event store a Scheduler delegates to. Two
// backends are provided: a calendar queue (the default, chosen for its O(1)
// amortized insert/remove under the steady, locally-clustered arrival
// pattern a CSMA/CA simulation produces) and a binary heap (a simpler
// O(log N) fallback, useful for small runs or as a cross-check).
type eventQueue interface {
	push(e *Event)
	remove(e *Event)
	popMin() *Event
	peekMin() *Event
	len() int
}

// --- heap backend -----------------------------------------------------

// heapQueue is a textbook binary min-heap ordered by (Time, seq), keeping
// each Event's position in e.heapIndex so an already-held *Event can be
// removed in O(log N) without a search (spec 4.1: "remove in O(log N) via
// the in-event position index").
type heapQueue struct {
	events []*Event
}

func newHeapQueue() *heapQueue {
	return &heapQueue{events: make([]*Event, 0, 256)}
}

func (q *heapQueue) len() int { return len(q.events) }

func (q *heapQueue) less(i, j int) bool {
	a, b := q.events[i], q.events[j]
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.seq < b.seq
}

func (q *heapQueue) swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
	q.events[i].heapIndex = i
	q.events[j].heapIndex = j
}

func (q *heapQueue) push(e *Event) {
	e.heapIndex = len(q.events)
	q.events = append(q.events, e)
	q.up(e.heapIndex)
}

func (q *heapQueue) peekMin() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return q.events[0]
}

func (q *heapQueue) popMin() *Event {
	if len(q.events) == 0 {
		return nil
	}
	min := q.events[0]
	q.removeAt(0)
	return min
}

func (q *heapQueue) remove(e *Event) {
	if e.heapIndex < 0 || e.heapIndex >= len(q.events) || q.events[e.heapIndex] != e {
		return
	}
	q.removeAt(e.heapIndex)
}

func (q *heapQueue) removeAt(i int) {
	n := len(q.events) - 1
	q.swap(i, n)
	q.events[n].heapIndex = -1
	q.events[n] = nil
	q.events = q.events[:n]
	if i < n {
		q.down(i)
		q.up(i)
	}
}

func (q *heapQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *heapQueue) down(i int) {
	n := len(q.events)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && q.less(right, left) {
			smallest = right
		}
		if !q.less(smallest, i) {
			return
		}
		q.swap(i, smallest)
		i = smallest
	}
}

// --- calendar queue backend --------------------------------------------

// calendarQueue is Brown's calendar queue (1988): events are hashed into
// buckets by Time, each bucket kept as an ascending, intrusively
// doubly-linked list. Insert and direct removal are O(1) (a sorted
// insertion into a near-empty list, or an unlink given the Event pointer);
// popMin scans forward from the last-visited bucket comparing each
// candidate against an advancing "year" boundary, falling back to a full
// bucket-head scan only when a pathological width miscalibration defeats
// the single-lap search.
type calendarQueue struct {
	buckets      []*Event // head of each bucket's sorted list, or nil
	width        Clock
	n            int
	lastBucket   int
	lastPriority Clock

	resizeSample []Clock // bounded sample of recent event Times, for re-tuning width
}

const (
	calMinBuckets   = 16
	calSampleLimit  = 25
	calDefaultWidth = Clock(1) // 1ns; rescaled on first resize once real gaps are observed
)

func newCalendarQueue() *calendarQueue {
	return &calendarQueue{
		buckets: make([]*Event, calMinBuckets),
		width:   calDefaultWidth,
	}
}

func (q *calendarQueue) len() int { return q.n }

func (q *calendarQueue) bucketIndex(t Clock) int {
	if q.width <= 0 {
		return 0
	}
	idx := int64(t/q.width) % int64(len(q.buckets))
	if idx < 0 {
		idx += int64(len(q.buckets))
	}
	return int(idx)
}

func (q *calendarQueue) push(e *Event) {
	q.recordSample(e.Time)
	e.bucket = q.bucketIndex(e.Time)
	q.insertSorted(e)
	q.n++
	q.maybeResize()
}

func (q *calendarQueue) insertSorted(e *Event) {
	head := q.buckets[e.bucket]
	if head == nil || e.Time < head.Time || (e.Time == head.Time && e.seq < head.seq) {
		e.next = head
		e.prev = nil
		if head != nil {
			head.prev = e
		}
		q.buckets[e.bucket] = e
		return
	}
	cur := head
	for cur.next != nil && (cur.next.Time < e.Time || (cur.next.Time == e.Time && cur.next.seq < e.seq)) {
		cur = cur.next
	}
	e.next = cur.next
	e.prev = cur
	if cur.next != nil {
		cur.next.prev = e
	}
	cur.next = e
}

func (q *calendarQueue) unlink(e *Event) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		q.buckets[e.bucket] = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.prev, e.next = nil, nil
}

func (q *calendarQueue) remove(e *Event) {
	q.unlink(e)
	q.n--
	q.maybeResize()
}

func (q *calendarQueue) peekMin() *Event {
	if q.n == 0 {
		return nil
	}
	if e := q.scanForMin(false); e != nil {
		return e
	}
	return q.globalMin()
}

func (q *calendarQueue) popMin() *Event {
	if q.n == 0 {
		return nil
	}
	e := q.scanForMin(true)
	if e == nil {
		e = q.globalMin()
		if e == nil {
			return nil
		}
		q.remove(e)
	}
	q.lastBucket = e.bucket
	q.lastPriority = e.Time
	return e
}

// scanForMin performs the single-lap calendar-queue search. If take is
// true, the winning event is unlinked before it is returned.
func (q *calendarQueue) scanForMin(take bool) *Event {
	nb := len(q.buckets)
	i := q.lastBucket
	boundary := q.lastPriority + q.width
	for scanned := 0; scanned < nb; scanned++ {
		if head := q.buckets[i]; head != nil && head.Time < boundary {
			if take {
				q.remove(head)
			}
			return head
		}
		i = (i + 1) % nb
		boundary += q.width
	}
	return nil
}

// globalMin is the correctness fallback: a linear scan of every bucket's
// head (each already the min of its own sorted list), used only when a
// single lap of scanForMin fails to find a qualifying candidate.
func (q *calendarQueue) globalMin() *Event {
	var min *Event
	for _, head := range q.buckets {
		if head == nil {
			continue
		}
		if min == nil || head.Time < min.Time || (head.Time == min.Time && head.seq < min.seq) {
			min = head
		}
	}
	return min
}

func (q *calendarQueue) recordSample(t Clock) {
	if len(q.resizeSample) >= calSampleLimit {
		q.resizeSample = q.resizeSample[1:]
	}
	q.resizeSample = append(q.resizeSample, t)
}

// maybeResize grows or shrinks the bucket array when occupancy drifts far
// from one event per bucket (spec 4.1 calendar-queue resize trigger:
// n crossing 2*bucketCount or bucketCount/2-2), re-tuning the bucket width
// from the bounded sample of recent event-time gaps.
func (q *calendarQueue) maybeResize() {
	nb := len(q.buckets)
	grow := q.n > 2*nb
	shrink := nb > calMinBuckets && q.n < nb/2-2
	if !grow && !shrink {
		return
	}
	newNB := nb
	if grow {
		newNB = nb * 2
	} else if shrink {
		newNB = nb / 2
		if newNB < calMinBuckets {
			newNB = calMinBuckets
		}
	}
	q.rebuild(newNB, q.estimateWidth())
}

// estimateWidth computes a new bucket width from the mean gap between
// samples in the bounded sample buffer, falling back to 1.0 (in Clock
// units, i.e. 1ns) when too few samples have been observed.
func (q *calendarQueue) estimateWidth() Clock {
	if len(q.resizeSample) < 2 {
		return calDefaultWidth
	}
	sorted := append([]Clock(nil), q.resizeSample...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	var total Clock
	count := 0
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i] - sorted[i-1]; gap > 0 {
			total += gap
			count++
		}
	}
	if count == 0 {
		return calDefaultWidth
	}
	w := total / Clock(count) * 2
	if w <= 0 {
		return calDefaultWidth
	}
	return w
}

func (q *calendarQueue) rebuild(newNB int, newWidth Clock) {
	var all []*Event
	for _, head := range q.buckets {
		for e := head; e != nil; {
			next := e.next
			e.prev, e.next = nil, nil
			all = append(all, e)
			e = next
		}
	}
	q.buckets = make([]*Event, newNB)
	q.width = newWidth
	q.lastBucket = 0
	for _, e := range all {
		e.bucket = q.bucketIndex(e.Time)
		q.insertSorted(e)
	}
}
