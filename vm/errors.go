// This file is part of metavm - https://github.com/db47h/metavm
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Recoverable runtime errors. They stop the current run but leave the
// instance in a consistent state.
var (
	ErrStackEmpty  = errors.New("stack empty")
	ErrInvalidType = errors.New("invalid type")
	ErrDivByZero   = errors.New("division by zero")
	ErrModByZero   = errors.New("division (modulo) by zero")
)

// Fatal runtime errors. They abort the current run.
var (
	ErrOutOfBounds    = errors.New("jumping out of bounds")
	ErrNotImplemented = errors.New("operation not implemented")
	ErrBadOpcode      = errors.New("unrecognized opcode")
)

// Codec errors.
var (
	ErrBadLength    = errors.New("invalid number of bytes")
	ErrOperandRange = errors.New("operand does not fit in 56 bits")
)

// Error is returned by Run when an instruction fails. Use errors.Cause to get
// the underlying error kind:
//
//	if errors.Cause(err) == vm.ErrStackEmpty {
//		// ...
//	}
type Error struct {
	PC  int         // index of the faulting instruction
	Ins Instruction // faulting instruction
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v @pc=%d (%v)", e.Err, e.PC, e.Ins)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.Err }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Fatal returns true if the error aborted the run without possibility of
// local recovery.
func (e *Error) Fatal() bool {
	switch errors.Cause(e.Err) {
	case ErrOutOfBounds, ErrNotImplemented, ErrBadOpcode:
		return true
	}
	return false
}

// IsFatal returns true if err is a fatal runtime error.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return false
}
