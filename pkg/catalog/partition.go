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
	"strconv"
	"time"
)

// PartitionBy selects the granularity that maps a row timestamp to its
// partition directory. Timestamps are epoch microseconds, UTC.
type PartitionBy int8

const (
	PartitionByNone PartitionBy = iota
	PartitionByHour
	PartitionByDay
	PartitionByMonth
	PartitionByYear
)

func (p PartitionBy) String() string {
	switch p {
	case PartitionByHour:
		return "HOUR"
	case PartitionByDay:
		return "DAY"
	case PartitionByMonth:
		return "MONTH"
	case PartitionByYear:
		return "YEAR"
	default:
		return "NONE"
	}
}

// Floor returns the first microsecond of the partition containing ts.
func (p PartitionBy) Floor(ts int64) int64 {
	if p == PartitionByNone {
		return math.MinInt64
	}
	return p.floorTime(ts).UnixMicro()
}

// Ceil returns the last microsecond of the partition containing ts.
func (p PartitionBy) Ceil(ts int64) int64 {
	if p == PartitionByNone {
		return math.MaxInt64
	}
	return p.next(p.floorTime(ts)).UnixMicro() - 1
}

func (p PartitionBy) floorTime(ts int64) time.Time {
	t := time.UnixMicro(ts).UTC()
	y, mo, d := t.Date()
	switch p {
	case PartitionByHour:
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, time.UTC)
	case PartitionByDay:
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	case PartitionByMonth:
		return time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
}

func (p PartitionBy) next(floor time.Time) time.Time {
	switch p {
	case PartitionByHour:
		return floor.Add(time.Hour)
	case PartitionByDay:
		return floor.AddDate(0, 0, 1)
	case PartitionByMonth:
		return floor.AddDate(0, 1, 0)
	default:
		return floor.AddDate(1, 0, 0)
	}
}

// DirName renders the partition identity directory name for ts.
func (p PartitionBy) DirName(ts int64) string {
	if p == PartitionByNone {
		return "default"
	}
	floor := p.floorTime(ts)
	switch p {
	case PartitionByHour:
		return floor.Format("2006-01-02T15")
	case PartitionByDay:
		return floor.Format("2006-01-02")
	case PartitionByMonth:
		return floor.Format("2006-01")
	default:
		return floor.Format("2006")
	}
}

// PartitionPath joins the table root with the partition identity directory.
func PartitionPath(tableRoot string, p PartitionBy, ts int64) string {
	return filepath.Join(tableRoot, p.DirName(ts))
}

// StagingPath names the txn-stamped merge staging directory. It becomes the
// canonical partition directory only after the commit stage swaps it in.
func StagingPath(tableRoot string, p PartitionBy, ts int64, txn int64) string {
	return PartitionPath(tableRoot, p, ts) + "." + strconv.FormatInt(txn, 10)
}
