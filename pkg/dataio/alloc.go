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

package dataio

import (
	"golang.org/x/sys/unix"

	"github.com/cairnstore/cairn/pkg/common/moerr"
)

// AllocNative grabs size bytes of anonymous mapped memory, invisible to the
// Go heap and the GC. The buffer must be released with FreeNative.
func AllocNative(size int64) ([]byte, error) {
	if size <= 0 {
		return nil, moerr.NewInvalidInputNoCtx("native alloc size %d", size)
	}
	data, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, moerr.NewOOMNoCtx()
	}
	return data, nil
}

func FreeNative(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.Munmap(data)
}
