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
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/cairnstore/cairn/pkg/common/ring"
	"github.com/cairnstore/cairn/pkg/logutil"
)

// PartitionJob runs a fixed pool of workers that drain the partition queue
// and plan each dequeued partition.
type PartitionJob struct {
	planner    *Planner
	partitionQ *ring.Queue
	workers    int
	pool       *ants.Pool

	stopC chan struct{}
	wg    sync.WaitGroup
}

func NewPartitionJob(planner *Planner, partitionQ *ring.Queue, workers int) (*PartitionJob, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &PartitionJob{
		planner:    planner,
		partitionQ: partitionQ,
		workers:    workers,
		pool:       pool,
		stopC:      make(chan struct{}),
	}, nil
}

func (j *PartitionJob) Start() error {
	for i := 0; i < j.workers; i++ {
		j.wg.Add(1)
		if err := j.pool.Submit(j.runLoop); err != nil {
			j.wg.Done()
			return err
		}
	}
	return nil
}

func (j *PartitionJob) Stop() {
	close(j.stopC)
	j.wg.Wait()
	j.pool.Release()
}

func (j *PartitionJob) runLoop() {
	defer j.wg.Done()
	ctx := context.Background()
	for {
		select {
		case <-j.stopC:
			return
		default:
		}
		worked, err := j.RunOne(ctx)
		if err != nil {
			logutil.Error("partition plan failed", zap.Error(err))
			continue
		}
		if !worked {
			time.Sleep(time.Millisecond)
		}
	}
}

// RunOne dequeues and plans at most one partition task, reporting whether
// any work was performed. The queue slot is released by the dequeue itself,
// before planning starts, so producers are never throttled by plan latency.
func (j *PartitionJob) RunOne(ctx context.Context) (bool, error) {
	v, ok := j.partitionQ.Sub()
	if !ok {
		return false, nil
	}
	task := v.(*PartitionTask)
	if err := j.planner.ProcessPartition(ctx, task); err != nil {
		return true, err
	}
	return true, nil
}
