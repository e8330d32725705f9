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

import "strconv"

// Kind identifies the type of a Value.
type Kind uint8

// Value kinds.
const (
	KindInt Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a runtime value stored on the stack. Only signed 64 bits integers
// are supported for now.
type Value struct {
	kind Kind
	i    int64
}

// Int returns an integer Value.
func Int(v int64) Value {
	return Value{kind: KindInt, i: v}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer held by v. ok is false if v is not an integer.
func (v Value) Int() (i int64, ok bool) {
	return v.i, v.kind == KindInt
}

// String returns the textual value of v as printed by the print instruction.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return "<" + v.kind.String() + ">"
	}
}

// Instruction is a concrete instruction: an opcode and its integer operand.
// Arg is 0 for opcodes that take no operand.
type Instruction struct {
	Op  Opcode
	Arg int64
}

func (ins Instruction) String() string {
	if ins.Op.Arg() == ArgNone {
		return ins.Op.String()
	}
	return ins.Op.String() + " " + strconv.FormatInt(ins.Arg, 10)
}
