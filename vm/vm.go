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
	"os"

	"github.com/pkg/errors"
)

// Tracer receives the state of the VM before each instruction is executed.
// stack holds the stack contents from bottom to top and must not be retained.
type Tracer interface {
	Step(pc int, ins Instruction, stack []Value)
}

// TracerFunc is an adapter to use ordinary functions as Tracers.
type TracerFunc func(pc int, ins Instruction, stack []Value)

// Step calls f(pc, ins, stack).
func (f TracerFunc) Step(pc int, ins Instruction, stack []Value) { f(pc, ins, stack) }

// OpHandler is the function prototype for custom opcode handlers. It is
// called with the instance PC pointing to ins and must return the index of the
// next instruction to execute, usually i.PC+1.
type OpHandler func(i *Instance, ins Instruction) (next int, err error)

// Instance represents a VM instance.
type Instance struct {
	PC       int           // Program Counter
	Code     []Instruction // Program
	stack    Stack
	insCount int64
	output   io.Writer
	tracer   Tracer
	handlers map[Opcode]OpHandler
}

// Option interface
type Option func(*Instance) error

// Output sets the io.Writer where the print instruction writes its output.
// The default is os.Stdout.
func Output(w io.Writer) Option {
	return func(i *Instance) error {
		if w == nil {
			return errors.New("Output: nil writer")
		}
		i.output = w
		return nil
	}
}

// Trace attaches a Tracer to the instance. A nil Tracer disables tracing.
func Trace(t Tracer) Option {
	return func(i *Instance) error {
		i.tracer = t
		return nil
	}
}

// BindHandler binds the provided handler to the given opcode.
//
// Only opcodes without built-in semantics can be bound: dup2, swap, clear and
// the conditional jumps. Executing one of these without a handler fails with
// ErrNotImplemented.
func BindHandler(op Opcode, h OpHandler) Option {
	return func(i *Instance) error {
		if !op.Valid() {
			return errors.Wrapf(ErrBadOpcode, "BindHandler %v", op)
		}
		if !extension(op) {
			return errors.Errorf("BindHandler: opcode %v has built-in semantics", op)
		}
		i.handlers[op] = h
		return nil
	}
}

// extension returns true for opcodes that are part of the instruction set but
// have no built-in runtime semantics.
func extension(op Opcode) bool {
	switch op {
	case OpDup2, OpSwap, OpClear, OpJe, OpJn, OpJg, OpJl, OpJge, OpJle, OpJz, OpJnz:
		return true
	}
	return false
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// New creates a new VM instance that will run the given program with an empty
// stack, starting at the first instruction.
//
// Options will be set by calling SetOptions.
func New(code []Instruction, opts ...Option) (*Instance, error) {
	i := &Instance{
		Code:     code,
		output:   os.Stdout,
		handlers: make(map[Opcode]OpHandler),
	}
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	return i, nil
}

// Reset clears the stack and resets the PC and instruction counter to 0.
func (i *Instance) Reset() {
	i.PC = 0
	i.insCount = 0
	i.stack.Clear()
}

// Data returns a copy of the stack contents from bottom to top.
func (i *Instance) Data() []Value {
	return i.stack.Values()
}

// Depth returns the stack depth.
func (i *Instance) Depth() int {
	return i.stack.Depth()
}

// Push pushes v on top of the stack.
func (i *Instance) Push(v Value) {
	i.stack.Push(v)
}

// Pop pops the value on top of the stack and returns it.
func (i *Instance) Pop() (Value, error) {
	return i.stack.Pop()
}

// Peek returns the n-th value from the top of the stack.
func (i *Instance) Peek(n int) (Value, error) {
	return i.stack.Peek(n)
}

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}

// Execute runs the given program on a new instance with an empty stack and
// the output of print instructions sent to w.
func Execute(code []Instruction, w io.Writer, opts ...Option) error {
	i, err := New(code, append([]Option{Output(w)}, opts...)...)
	if err != nil {
		return err
	}
	return i.Run()
}
