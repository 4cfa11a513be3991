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
	"encoding/binary"
	"errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/cairnstore/cairn/pkg/common/moerr"
)

const (
	// TimestampFileSuffix names the on-disk column file of the designated
	// timestamp column, "<column>.d" at the partition directory root.
	TimestampFileSuffix = ".d"

	// SizeMarkerName is the 8-byte little-endian row count marker written
	// at the root of an archived partition directory.
	SizeMarkerName = "_archive"
)

// FilesFacade is the io surface the planner touches. Descriptors are carried
// as int64 so a negated value can mark a descriptor borrowed from the live
// writer rather than opened here.
type FilesFacade interface {
	OpenRW(path string) (int64, error)
	Close(fd int64) error
	MapRO(fd int64, size int64) ([]byte, error)
	Unmap(data []byte) error
	Mkdirs(path string, mode os.FileMode) error
	ReadPartitionSize(dir string) (int64, error)
}

type osFiles struct{}

// NewFilesFacade returns the OS-backed facade.
func NewFilesFacade() FilesFacade {
	return osFiles{}
}

func errnoOf(err error) unix.Errno {
	var eno unix.Errno
	if errors.As(err, &eno) {
		return eno
	}
	return 0
}

func (osFiles) OpenRW(path string) (int64, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return 0, moerr.NewOpenFailed(path, errnoOf(err))
	}
	return int64(fd), nil
}

func (osFiles) Close(fd int64) error {
	if fd < 0 {
		fd = -fd
	}
	return unix.Close(int(fd))
}

func (osFiles) MapRO(fd int64, size int64) ([]byte, error) {
	if fd < 0 {
		fd = -fd
	}
	data, err := unix.Mmap(int(fd), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, moerr.NewMmapFailed("", errnoOf(err))
	}
	return data, nil
}

func (osFiles) Unmap(data []byte) error {
	if data == nil {
		return nil
	}
	return unix.Munmap(data)
}

func (osFiles) Mkdirs(path string, mode os.FileMode) error {
	if err := os.MkdirAll(path, mode); err != nil {
		return moerr.NewMkdirFailed(path, errnoOf(err))
	}
	return nil
}

// ReadPartitionSize reads the row count marker of an archived partition
// through an 8-byte scratch read.
func (f osFiles) ReadPartitionSize(dir string) (int64, error) {
	path := dir + string(os.PathSeparator) + SizeMarkerName
	fd, err := unix.Open(path, unix.O_RDONLY, 0)
	if err != nil {
		return 0, moerr.NewOpenFailed(path, errnoOf(err))
	}
	defer unix.Close(fd)

	var scratch [8]byte
	n, err := unix.Read(fd, scratch[:])
	if err != nil {
		return 0, moerr.NewOpenFailed(path, errnoOf(err))
	}
	if n != len(scratch) {
		return 0, moerr.NewShortRead(path)
	}
	return int64(binary.LittleEndian.Uint64(scratch[:])), nil
}

// WritePartitionSize writes the row count marker; the commit stage calls it
// when a partition is sealed.
func WritePartitionSize(dir string, rows int64) error {
	path := dir + string(os.PathSeparator) + SizeMarkerName
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], uint64(rows))
	if err := os.WriteFile(path, scratch[:], 0o644); err != nil {
		return moerr.NewOpenFailed(path, errnoOf(err))
	}
	return nil
}
