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
	"testing"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cairnstore/cairn/pkg/catalog"
	"github.com/cairnstore/cairn/pkg/common/ring"
)

func TestPartitionJobDrainsQueue(t *testing.T) {
	defer leaktest.AfterTest(t)()

	h := newHarness(0)
	h.opener.complete = true
	partitionQ := ring.New(8)
	job, err := NewPartitionJob(h.planner, partitionQ, 2)
	require.NoError(t, err)
	require.NoError(t, job.Start())

	writer := newTestWriter()
	root := t.TempDir()
	var tasks []*PartitionTask
	for _, ts := range []int64{day1 + 10, day1 + 20} {
		task := newTaskFor(root, entriesOf(ts), writer)
		task.TableFloorOfMinTimestamp = day0
		task.TableFloorOfMaxTimestamp = day0
		task.TableCeilOfMaxTimestamp = catalog.PartitionByDay.Ceil(day0)
		task.TableMaxTimestamp = day0 + 30
		tasks = append(tasks, task)
		require.Equal(t, ring.Published, partitionQ.TryPub(task))
	}

	for _, task := range tasks {
		waitLatch(t, task.DoneLatch)
	}
	job.Stop()

	// every column of every partition ran inline through the opener
	assert.Len(t, h.opener.recorded(), 2*writer.ColumnCount())
	assert.Len(t, h.sizeUpdates(), 2)
}

func TestPartitionJobRunOneIdle(t *testing.T) {
	defer leaktest.AfterTest(t)()

	h := newHarness(0)
	partitionQ := ring.New(8)
	job, err := NewPartitionJob(h.planner, partitionQ, 1)
	require.NoError(t, err)

	worked, err := job.RunOne(context.Background())
	require.NoError(t, err)
	assert.False(t, worked)
	job.Stop()
}
