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

// Opcode is the numeric code of an instruction. It is stored in the most
// significant byte of an encoded instruction.
type Opcode uint8

// Virtual Machine Opcodes. The numeric values are part of the binary format
// and must not be changed.
const (
	OpPop Opcode = iota + 1
	OpAdd
	OpInc
	OpDec
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPrint
	OpHalt
	OpDup
	OpDup2
	OpSwap
	OpClear
	OpOver
	OpPush
	OpJe
	OpJn
	OpJg
	OpJl
	OpJge
	OpJle
	OpJmp
	OpJz
	OpJnz
)

// ArgKind describes the operand expected by an opcode.
type ArgKind int

// Operand kinds.
const (
	ArgNone       ArgKind = iota // no operand
	ArgInt                       // integer immediate
	ArgIntOrLabel                // integer immediate or label, resolved to an instruction index
)

type opInfo struct {
	name string
	arg  ArgKind
}

var opcodes = [...]opInfo{
	OpPop:   {"pop", ArgNone},
	OpAdd:   {"add", ArgNone},
	OpInc:   {"inc", ArgNone},
	OpDec:   {"dec", ArgNone},
	OpSub:   {"sub", ArgNone},
	OpMul:   {"mul", ArgNone},
	OpDiv:   {"div", ArgNone},
	OpMod:   {"mod", ArgNone},
	OpPrint: {"print", ArgNone},
	OpHalt:  {"halt", ArgNone},
	OpDup:   {"dup", ArgNone},
	OpDup2:  {"dup2", ArgNone},
	OpSwap:  {"swap", ArgNone},
	OpClear: {"clear", ArgNone},
	OpOver:  {"over", ArgNone},
	OpPush:  {"push", ArgInt},
	OpJe:    {"je", ArgIntOrLabel},
	OpJn:    {"jn", ArgIntOrLabel},
	OpJg:    {"jg", ArgIntOrLabel},
	OpJl:    {"jl", ArgIntOrLabel},
	OpJge:   {"jge", ArgIntOrLabel},
	OpJle:   {"jle", ArgIntOrLabel},
	OpJmp:   {"jmp", ArgIntOrLabel},
	OpJz:    {"jz", ArgIntOrLabel},
	OpJnz:   {"jnz", ArgIntOrLabel},
}

var opcodeIndex = make(map[string]Opcode)

func init() {
	for i, v := range opcodes {
		if v.name != "" {
			opcodeIndex[v.name] = Opcode(i)
		}
	}
}

// Valid returns true if op is a member of the instruction set.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodes) && opcodes[op].name != ""
}

// Arg returns the kind of operand expected by op. Invalid opcodes take no
// operand.
func (op Opcode) Arg() ArgKind {
	if !op.Valid() {
		return ArgNone
	}
	return opcodes[op].arg
}

// String returns the assembler mnemonic for op.
func (op Opcode) String() string {
	if !op.Valid() {
		return "op(" + strconv.Itoa(int(op)) + ")"
	}
	return opcodes[op].name
}

// Lookup returns the opcode for the given mnemonic.
func Lookup(name string) (op Opcode, ok bool) {
	op, ok = opcodeIndex[name]
	return
}

// Opcodes returns all valid opcodes in ascending numeric order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodes))
	for i := range opcodes {
		if op := Opcode(i); op.Valid() {
			ops = append(ops, op)
		}
	}
	return ops
}
