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
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cairnstore/cairn/pkg/catalog"
	"github.com/cairnstore/cairn/pkg/common/ring"
	"github.com/cairnstore/cairn/pkg/dataio"
	"github.com/cairnstore/cairn/pkg/logutil"
)

// Planner turns partition tasks into per-column open-column tasks.
type Planner struct {
	ff          dataio.FilesFacade
	mkDirMode   os.FileMode
	openColumnQ *ring.Queue
	sizeQ       *ring.Queue
	opener      ColumnOpener
}

func NewPlanner(
	ff dataio.FilesFacade,
	mkDirMode os.FileMode,
	openColumnQ *ring.Queue,
	sizeQ *ring.Queue,
	opener ColumnOpener,
) *Planner {
	return &Planner{
		ff:          ff,
		mkDirMode:   mkDirMode,
		openColumnQ: openColumnQ,
		sizeQ:       sizeQ,
		opener:      opener,
	}
}

// partitionFiles is the opener's view of the existing partition.
type partitionFiles struct {
	// srcTimestampFd is negative when borrowed from the live writer.
	srcTimestampFd   int64
	srcTimestampData []byte
	srcDataMax       int64
	dataTimestampLo  int64
	dataTimestampHi  int64
}

func (f *partitionFiles) release(ff dataio.FilesFacade) {
	if f.srcTimestampData != nil {
		_ = ff.Unmap(f.srcTimestampData)
		f.srcTimestampData = nil
	}
	if f.srcTimestampFd > 0 {
		_ = ff.Close(f.srcTimestampFd)
		f.srcTimestampFd = 0
	}
}

// openPartition maps the existing partition's timestamp column. The live
// tail reuses the writer's descriptor; an archived partition is opened here
// and its row count read from the size marker.
func (p *Planner) openPartition(task *PartitionTask, partitionPath string) (partitionFiles, error) {
	var f partitionFiles
	tsIndex := task.TableWriter.TimestampIndex()

	if task.OooTimestampHi == task.TableCeilOfMaxTimestamp {
		f.dataTimestampHi = task.TableMaxTimestamp
		f.srcDataMax = task.LastPartitionSize
		f.srcTimestampFd = -task.Columns[tsIndex].DataFd
		data, err := p.ff.MapRO(-f.srcTimestampFd, f.srcDataMax*8)
		if err != nil {
			return partitionFiles{}, err
		}
		f.srcTimestampData = data
	} else {
		srcDataMax, err := p.ff.ReadPartitionSize(partitionPath)
		if err != nil {
			return partitionFiles{}, err
		}
		f.srcDataMax = srcDataMax

		tsPath := filepath.Join(partitionPath,
			task.TableWriter.ColumnName(tsIndex)+dataio.TimestampFileSuffix)
		fd, err := p.ff.OpenRW(tsPath)
		if err != nil {
			return partitionFiles{}, err
		}
		f.srcTimestampFd = fd
		data, err := p.ff.MapRO(fd, f.srcDataMax*8)
		if err != nil {
			_ = p.ff.Close(fd)
			return partitionFiles{}, err
		}
		f.srcTimestampData = data
		f.dataTimestampHi = dataio.Int64s(data)[f.srcDataMax-1]
	}
	f.dataTimestampLo = dataio.Int64s(f.srcTimestampData)[0]
	return f, nil
}

// ProcessPartition runs the full splice plan for one partition task: decide
// new/tail/archived, classify the overlap, build the merge index when rows
// interleave and hand one task per column to the copy stage.
func (p *Planner) ProcessPartition(ctx context.Context, task *PartitionTask) error {
	oooTimestampLo := task.SortedTimestamps[task.SrcOooLo].Ts
	partitionPath := catalog.PartitionPath(task.PathToTable, task.PartitionBy, oooTimestampLo)

	if task.OooTimestampHi > task.TableCeilOfMaxTimestamp ||
		task.OooTimestampHi < task.TableFloorOfMinTimestamp {
		// brand new partition above or below everything on disk
		logutil.Debug("create-partition", zap.String("path", partitionPath))
		if err := p.ff.Mkdirs(partitionPath, p.mkDirMode); err != nil {
			return err
		}
		plan := emptyPlan()
		plan.SuffixKind = BlockOO
		plan.SuffixLo = task.SrcOooLo
		plan.SuffixHi = task.SrcOooHi
		return p.publishColumnTasks(ctx, task, oooTimestampLo, planOutput{
			plan: plan,
			mode: OpenNewPartitionForAppend,
		})
	}

	files, err := p.openPartition(task, partitionPath)
	if err != nil {
		return err
	}

	dataTs := dataio.Int64s(files.srcTimestampData)
	plan := Classify(
		dataTs,
		files.srcDataMax,
		files.dataTimestampLo,
		files.dataTimestampHi,
		task.SortedTimestamps,
		task.SrcOooLo,
		task.SrcOooHi,
		oooTimestampLo,
		task.OooTimestampMax,
	)

	var mode OpenColumnMode
	if plan.PrefixKind == BlockNone {
		// plain append, no partition copy needed
		if task.OooTimestampHi < task.TableFloorOfMaxTimestamp {
			mode = OpenMidPartitionForAppend
		} else {
			mode = OpenLastPartitionForAppend
		}
	} else {
		staging := catalog.StagingPath(task.PathToTable, task.PartitionBy, oooTimestampLo, task.Txn)
		if err = p.ff.Mkdirs(staging, p.mkDirMode); err != nil {
			files.release(p.ff)
			return err
		}
		if files.srcTimestampFd > 0 {
			mode = OpenMidPartitionForMerge
		} else {
			mode = OpenLastPartitionForMerge
		}
	}

	var mergeIndex *MergeIndex
	if plan.MergeKind == BlockMerge {
		mergeIndex, err = BuildMergeIndex(
			dataTs,
			task.SortedTimestamps,
			plan.MergeDataLo,
			plan.MergeDataHi,
			plan.MergeOOOLo,
			plan.MergeOOOHi,
		)
		if err != nil {
			files.release(p.ff)
			return err
		}
	}

	return p.publishColumnTasks(ctx, task, oooTimestampLo, planOutput{
		plan:             plan,
		mode:             mode,
		srcTimestampFd:   files.srcTimestampFd,
		srcTimestampData: files.srcTimestampData,
		srcDataMax:       files.srcDataMax,
		dataTimestampHi:  files.dataTimestampHi,
		mergeIndex:       mergeIndex,
	})
}
