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
	"unsafe"
)

// Int64s views a mapped byte buffer as a column of int64 values. The buffer
// length must be a multiple of 8.
func Int64s(data []byte) []int64 {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*int64)(unsafe.Pointer(&data[0])), len(data)/8)
}

// Bytes views an int64 column back as raw bytes.
func Bytes(vals []int64) []byte {
	if len(vals) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vals[0])), len(vals)*8)
}
