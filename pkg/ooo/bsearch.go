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

// ScanDir biases bisection among duplicate keys.
type ScanDir int8

const (
	// ScanUp returns the lowest index holding the key.
	ScanUp ScanDir = iota
	// ScanDown returns the highest index holding the key.
	ScanDown
)

// SearchInt64 bisects the non-decreasing range vals[lo..hi] (inclusive) for
// value. When value is present the tie-break follows dir; when absent both
// directions return the index of the largest element below value, or lo-1
// when every element exceeds value.
func SearchInt64(vals []int64, value int64, lo, hi int64, dir ScanDir) int64 {
	// rightmost index with vals[i] <= value
	l, h := lo, hi+1
	for l < h {
		m := l + (h-l)/2
		if vals[m] <= value {
			l = m + 1
		} else {
			h = m
		}
	}
	floor := l - 1
	if floor < lo || vals[floor] != value || dir == ScanDown {
		return floor
	}
	// leftmost index with vals[i] == value
	l, h = lo, floor
	for l < h {
		m := l + (h-l)/2
		if vals[m] < value {
			l = m + 1
		} else {
			h = m
		}
	}
	return l
}

// SearchEntries is SearchInt64 over the 16-byte sorted timestamp entries.
func SearchEntries(entries []TimestampEntry, value int64, lo, hi int64, dir ScanDir) int64 {
	l, h := lo, hi+1
	for l < h {
		m := l + (h-l)/2
		if entries[m].Ts <= value {
			l = m + 1
		} else {
			h = m
		}
	}
	floor := l - 1
	if floor < lo || entries[floor].Ts != value || dir == ScanDown {
		return floor
	}
	l, h = lo, floor
	for l < h {
		m := l + (h-l)/2
		if entries[m].Ts < value {
			l = m + 1
		} else {
			h = m
		}
	}
	return l
}
