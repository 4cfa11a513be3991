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

package catalog

import (
	"sync"

	"github.com/google/btree"

	"github.com/cairnstore/cairn/pkg/common/ring"
)

// SizeUpdate reports the row count of one partition after a splice, stamped
// with the producing transaction.
type SizeUpdate struct {
	PartitionFloor int64
	Rows           int64
	Txn            int64
}

type sizeEntry struct {
	floor int64
	rows  int64
	txn   int64
}

func (e *sizeEntry) Less(than btree.Item) bool {
	return e.floor < than.(*sizeEntry).floor
}

// SizeBook reconciles partition row counts from size updates. Updates may
// arrive out of transaction order; the highest txn wins per partition.
type SizeBook struct {
	mu   sync.Mutex
	tree *btree.BTree
}

func NewSizeBook() *SizeBook {
	return &SizeBook{tree: btree.New(8)}
}

func (b *SizeBook) Apply(u SizeUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := &sizeEntry{floor: u.PartitionFloor}
	if it := b.tree.Get(key); it != nil {
		e := it.(*sizeEntry)
		if e.txn >= u.Txn {
			return
		}
		e.rows, e.txn = u.Rows, u.Txn
		return
	}
	b.tree.ReplaceOrInsert(&sizeEntry{floor: u.PartitionFloor, rows: u.Rows, txn: u.Txn})
}

// Rows returns the reconciled row count for the partition at floor.
func (b *SizeBook) Rows(floor int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if it := b.tree.Get(&sizeEntry{floor: floor}); it != nil {
		return it.(*sizeEntry).rows, true
	}
	return 0, false
}

func (b *SizeBook) Partitions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tree.Len()
}

// Ascend walks partitions in floor order. fn returning false stops the walk.
func (b *SizeBook) Ascend(fn func(floor, rows, txn int64) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.Ascend(func(it btree.Item) bool {
		e := it.(*sizeEntry)
		return fn(e.floor, e.rows, e.txn)
	})
}

// Drain consumes every queued SizeUpdate and applies it, returning how many
// updates were seen.
func (b *SizeBook) Drain(q *ring.Queue) int {
	n := 0
	for {
		v, ok := q.Sub()
		if !ok {
			return n
		}
		b.Apply(v.(SizeUpdate))
		n++
	}
}
