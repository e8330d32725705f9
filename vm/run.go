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
	"io"

	"github.com/pkg/errors"
)

func (i *Instance) binary(fn func(a, b int64) (int64, error)) error {
	if i.stack.Depth() < 2 {
		return ErrStackEmpty
	}
	// both operands are consumed, even if fn fails.
	vb, _ := i.stack.Pop()
	va, _ := i.stack.Pop()
	b, ok := vb.Int()
	if !ok {
		return errors.Wrapf(ErrInvalidType, "expected %v, got %v", KindInt, vb.Kind())
	}
	a, ok := va.Int()
	if !ok {
		return errors.Wrapf(ErrInvalidType, "expected %v, got %v", KindInt, va.Kind())
	}
	r, err := fn(a, b)
	if err != nil {
		return err
	}
	i.stack.Push(Int(r))
	return nil
}

func (i *Instance) unary(fn func(a int64) int64) error {
	tos := i.stack.top()
	if tos == nil {
		return ErrStackEmpty
	}
	a, ok := tos.Int()
	if !ok {
		return errors.Wrapf(ErrInvalidType, "expected %v, got %v", KindInt, tos.Kind())
	}
	*tos = Int(fn(a))
	return nil
}

func add(a, b int64) (int64, error) { return a + b, nil }
func sub(a, b int64) (int64, error) { return a - b, nil }
func mul(a, b int64) (int64, error) { return a * b, nil }

func div(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return a / b, nil
}

func mod(a, b int64) (int64, error) {
	if b == 0 {
		return 0, ErrModByZero
	}
	return a % b, nil
}

// Run starts execution of the VM at the current PC with the current stack.
//
// Execution stops when a halt instruction is executed or when an error occurs.
// After a halt, the PC points to the instruction following the halt and err is
// nil. If an error occurs, the PC will point to the instruction that triggered
// the error and err will be a *Error. Panics raised by bound handlers are
// recovered and reported the same way.
//
// Every instruction must leave the PC in the range [0, len(i.Code)): jumps
// outside the program, and running past the last instruction without a halt,
// are fatal errors.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				err = &Error{i.PC, i.current(), errors.Wrapf(e, "recovered error, stack %d", i.stack.Depth())}
			default:
				err = &Error{i.PC, i.current(), errors.Errorf("recovered panic: %v, stack %d", e, i.stack.Depth())}
			}
		}
	}()
	if i.PC < 0 || i.PC >= len(i.Code) {
		return &Error{i.PC, Instruction{}, errors.Wrapf(ErrOutOfBounds, "pc %d, program length %d", i.PC, len(i.Code))}
	}
	for {
		ins := i.Code[i.PC]
		if i.tracer != nil {
			i.tracer.Step(i.PC, ins, i.stack.data)
		}
		next := i.PC + 1
		switch ins.Op {
		case OpPop:
			_, err = i.stack.Pop()
		case OpAdd:
			err = i.binary(add)
		case OpInc:
			err = i.unary(func(a int64) int64 { return a + 1 })
		case OpDec:
			err = i.unary(func(a int64) int64 { return a - 1 })
		case OpSub:
			err = i.binary(sub)
		case OpMul:
			err = i.binary(mul)
		case OpDiv:
			err = i.binary(div)
		case OpMod:
			err = i.binary(mod)
		case OpPrint:
			var v Value
			if v, err = i.stack.Pop(); err == nil {
				if _, err = io.WriteString(i.output, v.String()+"\n"); err != nil {
					err = errors.Wrap(err, "print")
				}
			}
		case OpHalt:
			i.insCount++
			i.PC = next
			return nil
		case OpDup:
			var v Value
			if v, err = i.stack.Peek(0); err == nil {
				i.stack.Push(v)
			}
		case OpOver:
			var v Value
			if v, err = i.stack.Peek(1); err == nil {
				i.stack.Push(v)
			}
		case OpPush:
			i.stack.Push(Int(ins.Arg))
		case OpJmp:
			next = int(ins.Arg)
			if int64(next) != ins.Arg {
				next = -1
			}
		default:
			if h := i.handlers[ins.Op]; h != nil {
				next, err = h(i, ins)
			} else if ins.Op.Valid() {
				err = ErrNotImplemented
			} else {
				err = ErrBadOpcode
			}
		}
		if err != nil {
			return &Error{i.PC, ins, err}
		}
		if next < 0 || next >= len(i.Code) {
			return &Error{i.PC, ins, errors.Wrapf(ErrOutOfBounds, "next pc %d, program length %d", next, len(i.Code))}
		}
		i.PC = next
		i.insCount++
	}
}

// current returns the instruction at PC or a zero Instruction if the PC is out
// of bounds.
func (i *Instance) current() Instruction {
	if i.PC >= 0 && i.PC < len(i.Code) {
		return i.Code[i.PC]
	}
	return Instruction{}
}
