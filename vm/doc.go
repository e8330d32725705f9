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

// Package vm implements the metavm stack machine.
//
// A program is a slice of Instructions, each made of an Opcode and a signed
// integer operand. Programs are usually produced by the asm package, or loaded
// from their binary encoding with Decode or Load.
//
// An Instance executes a program against an operand stack, starting at the
// first instruction with an empty stack. Execution stops when a halt
// instruction is executed or on error. Errors returned by Run are *Error values
// wrapping one of the package level error variables:
//
//	- ErrStackEmpty, ErrInvalidType, ErrDivByZero and ErrModByZero are
//	  recoverable: the instance state is consistent and can be inspected.
//	  Arithmetic instructions consume both their operands before failing.
//	- ErrOutOfBounds, ErrNotImplemented and ErrBadOpcode are fatal and abort the
//	  run.
//
// The dup2, swap and clear opcodes as well as the conditional jumps have no
// built-in semantics. Hosts can give them one with BindHandler. Without a
// handler, executing them fails with ErrNotImplemented.
//
// Binary format:
//
// Each instruction is encoded as a big endian 64 bits word: the opcode in the
// most significant byte and the operand in the remaining 56 bits, as a two's
// complement integer. Operands outside [MinOperand, MaxOperand] do not survive
// encoding; CheckOperands reports them and Save refuses to write them.
package vm
