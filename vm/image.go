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
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// InstructionSize is the size in bytes of an encoded instruction.
const InstructionSize = 8

// Operands are stored as 56 bits two's complement integers.
const (
	operandBits = 56
	operandMask = 1<<operandBits - 1
	// MinOperand and MaxOperand are the bounds of operands that survive an
	// Encode/Decode round trip.
	MinOperand = -1 << (operandBits - 1)
	MaxOperand = 1<<(operandBits-1) - 1
)

// byteOrder is the byte order of encoded instructions. With big endian, the
// opcode is the first byte of each word.
var byteOrder = binary.BigEndian

func pack(ins Instruction) uint64 {
	return uint64(ins.Op)<<operandBits | uint64(ins.Arg)&operandMask
}

func unpack(w uint64) Instruction {
	// sign extend from bit 55
	arg := int64(w<<(64-operandBits)) >> (64 - operandBits)
	return Instruction{Op: Opcode(w >> operandBits), Arg: arg}
}

// Encode returns the binary encoding of the given instructions: one
// InstructionSize bytes big endian word per instruction, with the opcode in the
// most significant byte and the operand in the remaining 56 bits.
//
// Operands outside [MinOperand, MaxOperand] are truncated to their low 56 bits
// and will not decode to the same value. Use CheckOperands to detect them.
func Encode(code []Instruction) []byte {
	b := make([]byte, len(code)*InstructionSize)
	for k, ins := range code {
		byteOrder.PutUint64(b[k*InstructionSize:], pack(ins))
	}
	return b
}

// Decode decodes a program encoded with Encode. The length of b must be a
// multiple of InstructionSize and every opcode must be valid.
func Decode(b []byte) ([]Instruction, error) {
	if len(b)%InstructionSize != 0 {
		return nil, errors.Wrapf(ErrBadLength, "%d bytes (must be divisible by %d)", len(b), InstructionSize)
	}
	code := make([]Instruction, len(b)/InstructionSize)
	for k := range code {
		ins := unpack(byteOrder.Uint64(b[k*InstructionSize:]))
		if !ins.Op.Valid() {
			return nil, errors.Wrapf(ErrBadOpcode, "opcode %#02x at instruction %d", uint8(ins.Op), k)
		}
		code[k] = ins
	}
	return code, nil
}

// CheckOperands returns an error if the operand of any instruction cannot be
// encoded without loss of information.
func CheckOperands(code []Instruction) error {
	for k, ins := range code {
		if ins.Arg < MinOperand || ins.Arg > MaxOperand {
			return errors.Wrapf(ErrOperandRange, "value %d at instruction %d (%v)", ins.Arg, k, ins.Op)
		}
	}
	return nil
}

// Load loads a program from file fileName.
func Load(fileName string) ([]Instruction, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	b, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, "read failed")
	}
	code, err := Decode(b)
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	return code, nil
}

// Save saves a program to file fileName. It refuses to save programs with
// operands that do not fit in 56 bits. The file is removed on error.
func Save(fileName string, code []Instruction) (err error) {
	if err = CheckOperands(code); err != nil {
		return errors.Wrap(err, "save failed")
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	defer func() {
		if e := f.Close(); err == nil && e != nil {
			err = errors.Wrap(e, "close failed")
		}
		// delete file on error
		if err != nil {
			os.Remove(fileName)
		}
	}()
	w := bufio.NewWriter(f)
	if _, err = w.Write(Encode(code)); err != nil {
		return errors.Wrap(err, "write failed")
	}
	if err = w.Flush(); err != nil {
		return errors.Wrap(err, "write failed")
	}
	return nil
}
