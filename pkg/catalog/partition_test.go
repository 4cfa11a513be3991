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
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func micros(s string) int64 {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UnixMicro()
}

func TestFloorCeilDay(t *testing.T) {
	ts := micros("2020-01-02T13:45:10Z")
	assert.Equal(t, micros("2020-01-02T00:00:00Z"), PartitionByDay.Floor(ts))
	assert.Equal(t, micros("2020-01-03T00:00:00Z")-1, PartitionByDay.Ceil(ts))
}

func TestFloorCeilHour(t *testing.T) {
	ts := micros("2020-06-30T23:59:59Z")
	assert.Equal(t, micros("2020-06-30T23:00:00Z"), PartitionByHour.Floor(ts))
	assert.Equal(t, micros("2020-07-01T00:00:00Z")-1, PartitionByHour.Ceil(ts))
}

func TestFloorCeilMonthYear(t *testing.T) {
	ts := micros("2020-02-29T12:00:00Z")
	assert.Equal(t, micros("2020-02-01T00:00:00Z"), PartitionByMonth.Floor(ts))
	assert.Equal(t, micros("2020-03-01T00:00:00Z")-1, PartitionByMonth.Ceil(ts))
	assert.Equal(t, micros("2020-01-01T00:00:00Z"), PartitionByYear.Floor(ts))
	assert.Equal(t, micros("2021-01-01T00:00:00Z")-1, PartitionByYear.Ceil(ts))
}

func TestFloorOnBoundary(t *testing.T) {
	ts := micros("2020-01-02T00:00:00Z")
	assert.Equal(t, ts, PartitionByDay.Floor(ts))
	assert.Equal(t, micros("2020-01-03T00:00:00Z")-1, PartitionByDay.Ceil(ts))
}

func TestNone(t *testing.T) {
	assert.Equal(t, int64(math.MinInt64), PartitionByNone.Floor(123))
	assert.Equal(t, int64(math.MaxInt64), PartitionByNone.Ceil(123))
	assert.Equal(t, "default", PartitionByNone.DirName(123))
}

func TestDirNames(t *testing.T) {
	ts := micros("2020-01-02T13:45:10Z")
	assert.Equal(t, "2020-01-02T13", PartitionByHour.DirName(ts))
	assert.Equal(t, "2020-01-02", PartitionByDay.DirName(ts))
	assert.Equal(t, "2020-01", PartitionByMonth.DirName(ts))
	assert.Equal(t, "2020", PartitionByYear.DirName(ts))
}

func TestPaths(t *testing.T) {
	ts := micros("2020-01-02T13:45:10Z")
	require.Equal(t,
		filepath.Join("db", "trips", "2020-01-02"),
		PartitionPath(filepath.Join("db", "trips"), PartitionByDay, ts))
	require.Equal(t,
		filepath.Join("db", "trips", "2020-01-02.42"),
		StagingPath(filepath.Join("db", "trips"), PartitionByDay, ts, 42))
}
