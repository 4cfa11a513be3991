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
	"unsafe"

	"github.com/cairnstore/cairn/pkg/dataio"
)

const mergeEntryBytes = 16

// oooRowFlag marks a packed row position as sourced from the batch slice
// rather than from existing data.
const oooRowFlag = int64(-1) << 63

func PackDataRow(row int64) int64 {
	return row
}

func PackOOORow(row int64) int64 {
	return row | oooRowFlag
}

func IsOOORow(packed int64) bool {
	return packed&oooRowFlag != 0
}

func RowOf(packed int64) int64 {
	return packed &^ oooRowFlag
}

// MergeIndex is the ascending (timestamp, packed row position) sequence that
// drives interleaved copying. It lives in native memory so the copy stage
// can consume it without the GC relocating anything; the last column of the
// partition frees it through the column counter.
type MergeIndex struct {
	buf     []byte
	entries []TimestampEntry
}

func (m *MergeIndex) Entries() []TimestampEntry {
	return m.entries
}

func (m *MergeIndex) Free() error {
	if m.buf == nil {
		return nil
	}
	buf := m.buf
	m.buf = nil
	m.entries = nil
	return dataio.FreeNative(buf)
}

// BuildMergeIndex merges the existing data rows [mergeDataLo..mergeDataHi]
// with the batch slice rows [mergeOOOLo..mergeOOOHi] into timestamp order.
// The merge is stable: on equal timestamps data rows precede batch rows,
// preserving on-disk order.
func BuildMergeIndex(
	dataTs []int64,
	sorted []TimestampEntry,
	mergeDataLo int64,
	mergeDataHi int64,
	mergeOOOLo int64,
	mergeOOOHi int64,
) (*MergeIndex, error) {
	dataCount := mergeDataHi - mergeDataLo + 1
	oooCount := mergeOOOHi - mergeOOOLo + 1
	buf, err := dataio.AllocNative((dataCount + oooCount) * mergeEntryBytes)
	if err != nil {
		return nil, err
	}
	out := unsafe.Slice((*TimestampEntry)(unsafe.Pointer(&buf[0])), dataCount+oooCount)

	d, o, n := mergeDataLo, mergeOOOLo, int64(0)
	for d <= mergeDataHi && o <= mergeOOOHi {
		if dataTs[d] <= sorted[o].Ts {
			out[n] = TimestampEntry{Ts: dataTs[d], RowID: PackDataRow(d)}
			d++
		} else {
			out[n] = TimestampEntry{Ts: sorted[o].Ts, RowID: PackOOORow(sorted[o].RowID)}
			o++
		}
		n++
	}
	for ; d <= mergeDataHi; d++ {
		out[n] = TimestampEntry{Ts: dataTs[d], RowID: PackDataRow(d)}
		n++
	}
	for ; o <= mergeOOOHi; o++ {
		out[n] = TimestampEntry{Ts: sorted[o].Ts, RowID: PackOOORow(sorted[o].RowID)}
		n++
	}
	return &MergeIndex{buf: buf, entries: out}, nil
}
