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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedRows(t *testing.T) {
	assert.False(t, IsOOORow(PackDataRow(5)))
	assert.True(t, IsOOORow(PackOOORow(5)))
	assert.Equal(t, int64(5), RowOf(PackDataRow(5)))
	assert.Equal(t, int64(5), RowOf(PackOOORow(5)))
	assert.Equal(t, int64(0), RowOf(PackOOORow(0)))
}

func TestBuildMergeIndexInterleaves(t *testing.T) {
	data := []int64{10, 30, 50}
	sorted := entriesOf(20, 40)
	mi, err := BuildMergeIndex(data, sorted, 0, 2, 0, 1)
	require.NoError(t, err)
	defer mi.Free()

	entries := mi.Entries()
	require.Len(t, entries, 5)
	want := []int64{10, 20, 30, 40, 50}
	for i, e := range entries {
		assert.Equal(t, want[i], e.Ts)
	}
	assert.False(t, IsOOORow(entries[0].RowID))
	assert.True(t, IsOOORow(entries[1].RowID))
	assert.Equal(t, int64(0), RowOf(entries[1].RowID))
	assert.Equal(t, int64(2), RowOf(entries[4].RowID))
}

func TestBuildMergeIndexStableTies(t *testing.T) {
	// equal timestamps keep the on-disk row first
	data := []int64{10, 20, 20}
	sorted := entriesOf(20, 20, 30)
	mi, err := BuildMergeIndex(data, sorted, 0, 2, 0, 2)
	require.NoError(t, err)
	defer mi.Free()

	entries := mi.Entries()
	require.Len(t, entries, 6)
	var sources []bool
	for _, e := range entries {
		sources = append(sources, IsOOORow(e.RowID))
	}
	assert.Equal(t, []bool{false, false, false, true, true, true}, sources)
}

func TestBuildMergeIndexSubRanges(t *testing.T) {
	data := []int64{1, 2, 30, 40, 99}
	sorted := entriesOf(0, 35, 100)
	mi, err := BuildMergeIndex(data, sorted, 2, 3, 1, 1)
	require.NoError(t, err)
	defer mi.Free()

	entries := mi.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, int64(30), entries[0].Ts)
	assert.Equal(t, int64(35), entries[1].Ts)
	assert.True(t, IsOOORow(entries[1].RowID))
	assert.Equal(t, int64(1), RowOf(entries[1].RowID))
	assert.Equal(t, int64(40), entries[2].Ts)
}

func TestMergeIndexDoubleFree(t *testing.T) {
	mi, err := BuildMergeIndex([]int64{1}, entriesOf(2), 0, 0, 0, 0)
	require.NoError(t, err)
	require.NoError(t, mi.Free())
	require.NoError(t, mi.Free())
	assert.Nil(t, mi.Entries())
}
