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

package moerr

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

const (
	// 0 - 99 is OK; Succeeded reports true for these codes.
	Ok uint16 = 0

	OkMax uint16 = 99

	// Group 1: internal errors
	ErrStart    uint16 = 20100
	ErrInternal uint16 = 20101
	ErrNYI      uint16 = 20102
	ErrOOM      uint16 = 20103

	// Group 2: invalid input
	ErrBadConfig    uint16 = 20300
	ErrInvalidInput uint16 = 20301
	ErrInvalidState uint16 = 20302

	// Group 3: unexpected state and io errors
	ErrFileNotFound uint16 = 20400
	ErrOpenFailed   uint16 = 20401
	ErrMkdirFailed  uint16 = 20402
	ErrMmapFailed   uint16 = 20403
	ErrShortRead    uint16 = 20404
	ErrInvalidPath  uint16 = 20405

	ErrEnd uint16 = 65535
)

type errorItem struct {
	name   string
	format string
}

var errorItems = map[uint16]errorItem{
	ErrInternal:     {"internal error", "internal error: %s"},
	ErrNYI:          {"not yet implemented", "%s is not yet implemented"},
	ErrOOM:          {"out of memory", "out of memory"},
	ErrBadConfig:    {"invalid configuration", "invalid configuration: %s"},
	ErrInvalidInput: {"invalid input", "invalid input: %s"},
	ErrInvalidState: {"invalid state", "invalid state: %s"},
	ErrFileNotFound: {"file not found", "file %s is not found"},
	ErrOpenFailed:   {"open failed", "could not open %s"},
	ErrMkdirFailed:  {"mkdir failed", "could not create directory %s"},
	ErrMmapFailed:   {"mmap failed", "could not map %s"},
	ErrShortRead:    {"short read", "short read on %s"},
	ErrInvalidPath:  {"invalid path", "invalid path: %s"},
}

// Error is the only error type this module surfaces. It carries a numeric
// code, a rendered message and, for io errors, the OS errno and the
// offending path.
type Error struct {
	code  uint16
	msg   string
	errno unix.Errno
	path  string
}

func (e *Error) Error() string {
	if e.errno != 0 {
		return fmt.Sprintf("%s [errno=%d: %s]", e.msg, int(e.errno), e.errno.Error())
	}
	return e.msg
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) Errno() int {
	return int(e.errno)
}

func (e *Error) Path() string {
	return e.path
}

func (e *Error) Succeeded() bool {
	return e.code <= OkMax
}

// Is implements errors.Is target matching on the error code.
func (e *Error) Is(target error) bool {
	var me *Error
	if !errors.As(target, &me) {
		return false
	}
	return e.code == me.code
}

func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}
	var me *Error
	if !errors.As(e, &me) {
		return false
	}
	return me.code == rc
}

func newError(_ context.Context, code uint16, args ...any) *Error {
	item, has := errorItems[code]
	if !has {
		panic(fmt.Errorf("not existing error code %d with %v", code, args))
	}
	var msg string
	if len(args) == 0 {
		msg = item.format
	} else {
		msg = fmt.Sprintf(item.format, args...)
	}
	return &Error{code: code, msg: msg}
}

func newIOError(code uint16, path string, errno unix.Errno) *Error {
	e := newError(context.Background(), code, path)
	e.errno = errno
	e.path = path
	return e
}

// ErrnoOf extracts the OS errno from err, unwrapping as needed. Returns 0
// when err carries no errno.
func ErrnoOf(err error) int {
	var me *Error
	if errors.As(err, &me) {
		return me.Errno()
	}
	var eno unix.Errno
	if errors.As(err, &eno) {
		return int(eno)
	}
	return 0
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrInternal, fmt.Sprintf(msg, args...))
}

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(context.Background(), msg, args...)
}

func NewNYI(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrNYI, fmt.Sprintf(msg, args...))
}

func NewOOM(ctx context.Context) *Error {
	return newError(ctx, ErrOOM)
}

func NewOOMNoCtx() *Error {
	return NewOOM(context.Background())
}

func NewBadConfig(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrBadConfig, fmt.Sprintf(msg, args...))
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrInvalidInput, fmt.Sprintf(msg, args...))
}

func NewInvalidInputNoCtx(msg string, args ...any) *Error {
	return NewInvalidInput(context.Background(), msg, args...)
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrInvalidState, fmt.Sprintf(msg, args...))
}

func NewFileNotFound(ctx context.Context, f string) *Error {
	return newError(ctx, ErrFileNotFound, f)
}

func NewInvalidPath(ctx context.Context, f string) *Error {
	return newError(ctx, ErrInvalidPath, f)
}

func NewOpenFailed(path string, errno unix.Errno) *Error {
	return newIOError(ErrOpenFailed, path, errno)
}

func NewMkdirFailed(path string, errno unix.Errno) *Error {
	return newIOError(ErrMkdirFailed, path, errno)
}

func NewMmapFailed(path string, errno unix.Errno) *Error {
	return newIOError(ErrMmapFailed, path, errno)
}

func NewShortRead(path string) *Error {
	return newError(context.Background(), ErrShortRead, path)
}
