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

	"go.uber.org/zap"

	"github.com/cairnstore/cairn/pkg/common/ring"
	"github.com/cairnstore/cairn/pkg/logutil"
)

// planOutput is everything the opener and classifier produced for one
// partition, fanned out verbatim to every column task.
type planOutput struct {
	plan             SplicePlan
	mode             OpenColumnMode
	srcTimestampFd   int64
	srcTimestampData []byte
	srcDataMax       int64
	dataTimestampHi  int64
	mergeIndex       *MergeIndex
}

// publishColumnTasks emits one open-column task per table column, timestamp
// column included. The shared column counter starts at the column count so
// the last finished column can release the partition's shared state.
func (p *Planner) publishColumnTasks(
	ctx context.Context,
	task *PartitionTask,
	oooTimestampLo int64,
	out planOutput,
) error {
	logutil.Debug("plan-partition",
		zap.Int64("ts", oooTimestampLo),
		zap.Stringer("mode", out.mode))

	writer := task.TableWriter
	columnCount := writer.ColumnCount()
	tsIndex := writer.TimestampIndex()
	counter := NewColumnCounter(columnCount)

	for i := 0; i < columnCount; i++ {
		columnType := writer.ColumnType(i)

		var activeFixFd, activeVarFd int64
		var srcOooFix, srcOooVar []byte
		if !columnType.IsVarSize() {
			activeFixFd = task.Columns[i].DataFd
			srcOooFix = task.OOOColumns[i].Data
		} else {
			// var-size columns swap slots: offsets drive the fixed side
			activeFixFd = task.Columns[i].AuxFd
			activeVarFd = task.Columns[i].DataFd
			srcOooFix = task.OOOColumns[i].Aux
			srcOooVar = task.OOOColumns[i].Data
		}

		taskType := columnType
		if i == tsIndex {
			taskType = -columnType
		}

		columnTask := &OpenColumnTask{
			Mode:                     out.mode,
			FF:                       p.ff,
			PathToTable:              task.PathToTable,
			PartitionBy:              task.PartitionBy,
			ColumnName:               writer.ColumnName(i),
			ColumnType:               taskType,
			Indexed:                  writer.ColumnIndexed(i),
			ColumnCounter:            counter,
			MergeIndex:               out.mergeIndex,
			SrcOooFix:                srcOooFix,
			SrcOooVar:                srcOooVar,
			SrcOooLo:                 task.SrcOooLo,
			SrcOooHi:                 task.SrcOooHi,
			SrcOooMax:                task.SrcOooMax,
			OooTimestampMin:          task.OooTimestampMin,
			OooTimestampMax:          task.OooTimestampMax,
			OooTimestampLo:           oooTimestampLo,
			OooTimestampHi:           task.OooTimestampHi,
			SrcDataMax:               out.srcDataMax,
			TableFloorOfMaxTimestamp: task.TableFloorOfMaxTimestamp,
			DataTimestampHi:          out.dataTimestampHi,
			Txn:                      task.Txn,
			Plan:                     out.plan,
			SrcTimestampFd:           out.srcTimestampFd,
			SrcTimestampData:         out.srcTimestampData,
			ActiveFixFd:              activeFixFd,
			ActiveVarFd:              activeVarFd,
			ActiveTop:                writer.ColumnTop(i),
			TableWriter:              writer,
			SizeQueue:                p.sizeQ,
			DoneLatch:                task.DoneLatch,
		}

		if err := p.publishColumnTask(ctx, columnTask); err != nil {
			return err
		}
	}
	return nil
}

// publishColumnTask hands one task to the copy stage. A contended slot is
// retried; a full queue degrades to running the open-column stage inline on
// the calling worker.
func (p *Planner) publishColumnTask(ctx context.Context, t *OpenColumnTask) error {
	for {
		switch p.openColumnQ.TryPub(t) {
		case ring.Published:
			return nil
		case ring.Full:
			return p.opener.OpenColumn(ctx, t)
		case ring.Contended:
			// another producer raced us, the slot may free up next spin
		}
	}
}
