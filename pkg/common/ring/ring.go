// Copyright 2021 - 2022 Cairnstore
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ring

import (
	"github.com/yireyun/go-queue"
)

// PubStatus is the producer-side outcome of a TryPub attempt.
type PubStatus int8

const (
	// Published means the value landed in a slot.
	Published PubStatus = 0
	// Full means the queue is at capacity; the producer must fall back to
	// running the work inline.
	Full PubStatus = -1
	// Contended means another producer raced us for the slot; retry.
	Contended PubStatus = -2
)

// Queue is an MPMC ring with a fixed logical capacity. The underlying ring
// is sized larger than the logical capacity so that a slot race and a full
// queue stay distinguishable.
type Queue struct {
	es  *queue.EsQueue
	cap uint32
}

// New creates a queue holding at most capacity values. capacity must be a
// power of two; zero is allowed and yields a queue that is always full.
func New(capacity uint32) *Queue {
	backing := capacity * 2
	if backing < 8 {
		backing = 8
	}
	return &Queue{
		es:  queue.NewQueue(backing),
		cap: capacity,
	}
}

// TryPub attempts to publish v without blocking.
func (q *Queue) TryPub(v any) PubStatus {
	if q.es.Quantity() >= q.cap {
		return Full
	}
	ok, quantity := q.es.Put(v)
	if ok {
		return Published
	}
	if quantity >= q.cap {
		return Full
	}
	return Contended
}

// Sub removes and returns one value, or ok=false when the queue is empty.
// Returning the value releases its slot for producers.
func (q *Queue) Sub() (v any, ok bool) {
	v, ok, _ = q.es.Get()
	return v, ok
}

// Len returns the number of queued values.
func (q *Queue) Len() uint32 {
	return q.es.Quantity()
}

// Cap returns the logical capacity.
func (q *Queue) Cap() uint32 {
	return q.cap
}
