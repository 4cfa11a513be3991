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
	"sync/atomic"
)

// CountDown blocks waiters until CountDown has been called n times. Counting
// below zero panics, it means a stage reported completion twice.
type CountDown struct {
	remaining int64
	done      chan struct{}
}

func NewCountDown(n int64) *CountDown {
	l := &CountDown{
		remaining: n,
		done:      make(chan struct{}),
	}
	if n <= 0 {
		close(l.done)
	}
	return l
}

// CountDown decrements the latch. The caller that brings it to zero releases
// all waiters.
func (l *CountDown) CountDown() {
	v := atomic.AddInt64(&l.remaining, -1)
	if v == 0 {
		close(l.done)
	} else if v < 0 {
		panic("latch: counted down below zero")
	}
}

// Add raises the remaining count before any waiter can have been released.
func (l *CountDown) Add(n int64) {
	atomic.AddInt64(&l.remaining, n)
}

func (l *CountDown) Count() int64 {
	return atomic.LoadInt64(&l.remaining)
}

func (l *CountDown) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
