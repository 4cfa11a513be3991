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

package ooo

import (
	"context"
	"sync/atomic"

	"github.com/cairnstore/cairn/pkg/catalog"
	"github.com/cairnstore/cairn/pkg/common/latch"
	"github.com/cairnstore/cairn/pkg/common/ring"
	"github.com/cairnstore/cairn/pkg/dataio"
)

// BlockKind labels the source of one block of a splice plan.
type BlockKind int8

const (
	BlockNone BlockKind = iota
	// BlockData sources rows from the existing on-disk partition.
	BlockData
	// BlockOO sources rows from the in-memory sorted batch slice.
	BlockOO
	// BlockMerge interleaves both sources through the merge index.
	BlockMerge
)

func (k BlockKind) String() string {
	switch k {
	case BlockData:
		return "data"
	case BlockOO:
		return "ooo"
	case BlockMerge:
		return "merge"
	default:
		return "none"
	}
}

// OpenColumnMode tells the downstream copy stage how each column file of the
// target partition is opened.
type OpenColumnMode int8

const (
	OpenNewPartitionForAppend OpenColumnMode = iota + 1
	OpenMidPartitionForAppend
	OpenLastPartitionForAppend
	OpenMidPartitionForMerge
	OpenLastPartitionForMerge
)

func (m OpenColumnMode) String() string {
	switch m {
	case OpenNewPartitionForAppend:
		return "new-append"
	case OpenMidPartitionForAppend:
		return "mid-append"
	case OpenLastPartitionForAppend:
		return "last-append"
	case OpenMidPartitionForMerge:
		return "mid-merge"
	case OpenLastPartitionForMerge:
		return "last-merge"
	default:
		return "unknown"
	}
}

// ColumnType enumerates storage types as the copy stage sees them. A negated
// value on an OpenColumnTask marks the designated timestamp column.
type ColumnType int8

const (
	ColumnInt ColumnType = iota + 1
	ColumnLong
	ColumnDouble
	ColumnTimestamp
	ColumnString
	ColumnBinary
)

// IsVarSize reports whether the type stores variable-length values split
// across a data file and an aux offsets file.
func (t ColumnType) IsVarSize() bool {
	return t == ColumnString || t == ColumnBinary
}

// TimestampEntry is one 16-byte record of the batch-wide sorted timestamp
// index: the row timestamp and its row position within the batch.
type TimestampEntry struct {
	Ts    int64
	RowID int64
}

// ActiveColumn carries the live writer's open descriptors for one column.
// AuxFd is zero for fixed-width columns.
type ActiveColumn struct {
	DataFd int64
	AuxFd  int64
}

// OOOColumn points at one column of the sorted in-memory batch. For
// variable-length columns Data holds values and Aux holds offsets; Aux is
// nil otherwise.
type OOOColumn struct {
	Data []byte
	Aux  []byte
}

// TableWriter is the metadata surface consumed from the owning writer.
type TableWriter interface {
	ColumnCount() int
	TimestampIndex() int
	ColumnName(i int) string
	ColumnType(i int) ColumnType
	ColumnIndexed(i int) bool
	ColumnTop(i int) int64
}

// SplicePlan decomposes one partition splice into up to three blocks. Row
// bounds are inclusive; unset bounds are -1.
type SplicePlan struct {
	PrefixKind BlockKind
	PrefixLo   int64
	PrefixHi   int64

	MergeKind   BlockKind
	MergeDataLo int64
	MergeDataHi int64
	MergeOOOLo  int64
	MergeOOOHi  int64

	SuffixKind BlockKind
	SuffixLo   int64
	SuffixHi   int64
}

func emptyPlan() SplicePlan {
	return SplicePlan{
		PrefixLo: -1, PrefixHi: -1,
		MergeDataLo: -1, MergeDataHi: -1,
		MergeOOOLo: -1, MergeOOOHi: -1,
		SuffixLo: -1, SuffixHi: -1,
	}
}

// PartitionTask asks the planner to splice one batch slice into one target
// partition. Immutable once published.
type PartitionTask struct {
	PathToTable string
	PartitionBy catalog.PartitionBy

	Columns    []ActiveColumn
	OOOColumns []OOOColumn

	SrcOooLo  int64
	SrcOooHi  int64
	SrcOooMax int64

	OooTimestampMin int64
	OooTimestampMax int64
	OooTimestampHi  int64

	Txn              int64
	SortedTimestamps []TimestampEntry

	LastPartitionSize        int64
	TableCeilOfMaxTimestamp  int64
	TableFloorOfMinTimestamp int64
	TableFloorOfMaxTimestamp int64
	TableMaxTimestamp        int64

	TableWriter TableWriter
	DoneLatch   *latch.CountDown
}

// OpenColumnTask directs the copy stage for one column of one partition.
type OpenColumnTask struct {
	Mode OpenColumnMode
	FF   dataio.FilesFacade

	PathToTable string
	PartitionBy catalog.PartitionBy
	ColumnName  string

	// ColumnType is negated when the column is the designated timestamp.
	ColumnType ColumnType
	Indexed    bool

	ColumnCounter *ColumnCounter
	MergeIndex    *MergeIndex

	SrcOooFix []byte
	SrcOooVar []byte

	SrcOooLo  int64
	SrcOooHi  int64
	SrcOooMax int64

	OooTimestampMin int64
	OooTimestampMax int64
	OooTimestampLo  int64
	OooTimestampHi  int64

	SrcDataMax               int64
	TableFloorOfMaxTimestamp int64
	DataTimestampHi          int64
	Txn                      int64

	Plan SplicePlan

	// SrcTimestampFd is negative when the descriptor is borrowed from the
	// live writer and must not be closed downstream.
	SrcTimestampFd   int64
	SrcTimestampData []byte

	ActiveFixFd int64
	ActiveVarFd int64
	ActiveTop   int64

	TableWriter TableWriter
	SizeQueue   *ring.Queue
	DoneLatch   *latch.CountDown
}

// ColumnOpener executes the open-column stage for a single task. The planner
// invokes it inline when the open-column queue is saturated.
type ColumnOpener interface {
	OpenColumn(ctx context.Context, task *OpenColumnTask) error
}

// ColumnCounter tracks how many columns of one partition are still pending.
// The column that brings it to zero releases the partition's shared state.
type ColumnCounter struct {
	n int32
}

func NewColumnCounter(columns int) *ColumnCounter {
	return &ColumnCounter{n: int32(columns)}
}

func (c *ColumnCounter) Count() int32 {
	return atomic.LoadInt32(&c.n)
}

func (c *ColumnCounter) dec() int32 {
	return atomic.AddInt32(&c.n, -1)
}

// Done reports completion of this task's column. The final column of the
// partition frees the merge index, releases the timestamp mapping, closes
// the owned timestamp descriptor, publishes the partition's new size and
// counts down the partition latch.
func (t *OpenColumnTask) Done() error {
	if t.ColumnCounter.dec() != 0 {
		return nil
	}
	var firstErr error
	if t.MergeIndex != nil {
		if err := t.MergeIndex.Free(); err != nil {
			firstErr = err
		}
	}
	if t.SrcTimestampData != nil {
		if err := t.FF.Unmap(t.SrcTimestampData); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if t.SrcTimestampFd > 0 {
		if err := t.FF.Close(t.SrcTimestampFd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if t.SizeQueue != nil {
		upd := catalog.SizeUpdate{
			PartitionFloor: t.PartitionBy.Floor(t.OooTimestampLo),
			Rows:           t.SrcDataMax + t.SrcOooHi - t.SrcOooLo + 1,
			Txn:            t.Txn,
		}
		// the bookkeeping stage drains this queue; saturation is transient
		for t.SizeQueue.TryPub(upd) != ring.Published {
		}
	}
	t.DoneLatch.CountDown()
	return firstErr
}
