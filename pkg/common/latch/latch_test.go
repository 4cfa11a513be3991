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

package latch

import (
	"context"
	"testing"
	"time"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/require"
)

func TestCountDown(t *testing.T) {
	defer leaktest.AfterTest(t)()
	l := NewCountDown(3)
	require.Equal(t, int64(3), l.Count())

	released := make(chan struct{})
	go func() {
		require.NoError(t, l.Wait(context.Background()))
		close(released)
	}()

	l.CountDown()
	l.CountDown()
	select {
	case <-released:
		t.Fatal("released before count reached zero")
	case <-time.After(10 * time.Millisecond):
	}
	l.CountDown()
	<-released
}

func TestCountDownZero(t *testing.T) {
	l := NewCountDown(0)
	require.NoError(t, l.Wait(context.Background()))
}

func TestWaitCancelled(t *testing.T) {
	defer leaktest.AfterTest(t)()
	l := NewCountDown(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestCountBelowZeroPanics(t *testing.T) {
	l := NewCountDown(1)
	l.CountDown()
	require.Panics(t, func() { l.CountDown() })
}
