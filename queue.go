// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"container/heap"
	"sort"
	"time"
)

// event requests the evaluation of a component at a given time. scheduler is
// the component whose output change caused the event, or MasterID for
// commands.
//
type event struct {
	time      time.Duration
	component ID
	scheduler ID
	id        uint64
}

type eventHeap []event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].id < h[j].id
}
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// eventQueue is a priority queue of events ordered by time then insertion
// order. It is not safe for concurrent use.
//
type eventQueue struct {
	h   eventHeap
	seq uint64
}

func (q *eventQueue) schedule(t time.Duration, component, scheduler ID) {
	q.seq++
	heap.Push(&q.h, event{t, component, scheduler, q.seq})
}

func (q *eventQueue) len() int { return len(q.h) }

// popBatch removes and returns the earliest event together with all events
// sharing its time and scheduler. When a component appears more than once in
// the batch, only its latest event is kept. Events are returned in insertion
// order.
//
func (q *eventQueue) popBatch() []event {
	if len(q.h) == 0 {
		return nil
	}
	first := heap.Pop(&q.h).(event)
	batch := []event{first}
	var others []event
	for len(q.h) > 0 && q.h[0].time == first.time {
		e := heap.Pop(&q.h).(event)
		if e.scheduler == first.scheduler {
			batch = append(batch, e)
		} else {
			others = append(others, e)
		}
	}
	for _, e := range others {
		heap.Push(&q.h, e)
	}

	latest := make(map[ID]uint64, len(batch))
	for _, e := range batch {
		if e.id > latest[e.component] {
			latest[e.component] = e.id
		}
	}
	kept := batch[:0]
	for _, e := range batch {
		if latest[e.component] == e.id {
			kept = append(kept, e)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].id < kept[j].id })
	return kept
}

// reschedule schedules a self-event for component id at t, replacing any
// pending self-event so that a component never has more than one.
//
func (q *eventQueue) reschedule(t time.Duration, id ID) {
	q.filter(func(e *event) bool { return e.component != id || e.scheduler != id })
	q.schedule(t, id, id)
}

// cancel removes all pending events targeting component id.
//
func (q *eventQueue) cancel(id ID) {
	q.filter(func(e *event) bool { return e.component != id })
}

func (q *eventQueue) filter(keep func(e *event) bool) {
	kept := q.h[:0]
	for i := range q.h {
		if keep(&q.h[i]) {
			kept = append(kept, q.h[i])
		}
	}
	if len(kept) == len(q.h) {
		return
	}
	for i := len(kept); i < len(q.h); i++ {
		q.h[i] = event{}
	}
	q.h = kept
	heap.Init(&q.h)
}
