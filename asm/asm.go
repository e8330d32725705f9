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

package asm

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/db47h/metavm/internal/ewr"
	"github.com/db47h/metavm/vm"
)

// ErrorKind identifies the class of an assembler error.
type ErrorKind int

// Assembler error kinds.
const (
	ErrSyntax          ErrorKind = iota // scanner error (e.g. illegal UTF-8 encoding)
	ErrUnexpectedToken                  // unrecognized lexeme or token in the wrong place
	ErrMissingOperand                   // opcode expecting an operand at end of input
	ErrEmptyLabel                       // ':' with no name
	ErrDuplicateLabel                   // label declared twice
	ErrUndefinedLabel                   // reference to an undeclared label
)

// Error is the error type returned by Assemble and Compile. Name is the
// offending token text or label name.
type Error struct {
	Pos  scanner.Position
	Kind ErrorKind
	Name string
	Prev scanner.Position // previous declaration, for ErrDuplicateLabel
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ErrUnexpectedToken:
		msg = "unexpected token: '" + e.Name + "'"
	case ErrMissingOperand:
		msg = "missing operand for '" + e.Name + "'"
	case ErrEmptyLabel:
		msg = "empty label name"
	case ErrDuplicateLabel:
		msg = "label '" + e.Name + "' already exists"
		if e.Prev.IsValid() {
			msg += ", previous definition here: " + e.Prev.String()
		}
	case ErrUndefinedLabel:
		msg = "label '" + e.Name + "' does not exist"
	default:
		msg = e.Name
	}
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + msg
	}
	return msg
}

// Observer receives the intermediate results of the assembler. This is
// intended for diagnostics.
type Observer interface {
	Tokens(toks []Token)
	Code(code []vm.Instruction)
}

// Option interface
type Option func(*options)

type options struct {
	obs Observer
}

// WithObserver attaches an Observer to the assembler.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.obs = o }
}

// Program is the output of the assembler.
type Program struct {
	Code   []vm.Instruction
	Labels map[string]int // label name to instruction index
}

// Assemble compiles assembly read from the supplied io.Reader and returns the
// resulting program and error if any.
//
// The name parameter is used only in error messages to name the source of the
// error. If the io.Reader is a file, name should be the file name.
//
// The returned error, if not nil, is an *Error.
func Assemble(name string, r io.Reader, opts ...Option) (*Program, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	toks, err := lex(name, r)
	if err != nil {
		return nil, err
	}
	if o.obs != nil {
		o.obs.Tokens(toks)
	}
	p := newParser(toks)
	if err = p.scan(); err != nil {
		return nil, err
	}
	if err = p.resolve(); err != nil {
		return nil, err
	}
	prog := &Program{Code: p.concrete(), Labels: p.symbols()}
	if o.obs != nil {
		o.obs.Code(prog.Code)
	}
	return prog, nil
}

// Compile compiles the given source text.
func Compile(src string, opts ...Option) ([]vm.Instruction, error) {
	p, err := Assemble("", strings.NewReader(src), opts...)
	if err != nil {
		return nil, err
	}
	return p.Code, nil
}

// Disassemble writes a disassembly of the instruction in the given slice at
// position pc to the specified io.Writer and returns the position of the next
// instruction and any write error.
//
// If names is not nil, jump targets with a matching entry are written as
// label references.
func Disassemble(code []vm.Instruction, pc int, names map[int]string, w io.Writer) (next int, err error) {
	ew, _ := w.(*ewr.ErrWriter)
	if ew == nil {
		ew = ewr.New(w)
	}
	ins := code[pc]
	io.WriteString(ew, ins.Op.String())
	switch ins.Op.Arg() {
	case vm.ArgIntOrLabel:
		if n, ok := names[int(ins.Arg)]; ok && int64(int(ins.Arg)) == ins.Arg {
			io.WriteString(ew, " :")
			io.WriteString(ew, n)
			break
		}
		fallthrough
	case vm.ArgInt:
		ew.Write([]byte{' '})
		io.WriteString(ew, strconv.FormatInt(ins.Arg, 10))
	}
	return pc + 1, ew.Err
}

// DisassembleAll writes a disassembly of all instructions in the given slice
// to the specified io.Writer. Label declarations from the labels map are
// written before the instruction they point to. The output can be assembled
// back into the same program. It will return any write error.
func DisassembleAll(code []vm.Instruction, labels map[string]int, w io.Writer) error {
	ew := ewr.New(w)
	names := make(map[int]string, len(labels))
	decls := make(map[int][]string, len(labels))
	for n, a := range labels {
		decls[a] = append(decls[a], n)
		if prev, ok := names[a]; !ok || n < prev {
			names[a] = n
		}
	}
	for pc := 0; pc < len(code); {
		writeLabels(ew, decls[pc])
		ew.Write([]byte{'\t'})
		pc, _ = Disassemble(code, pc, names, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	// labels pointing past the end of the program
	var tail []string
	for a, ns := range decls {
		if a < 0 || a >= len(code) {
			tail = append(tail, ns...)
		}
	}
	writeLabels(ew, tail)
	return ew.Err
}

func writeLabels(w io.Writer, names []string) {
	sort.Strings(names)
	for _, n := range names {
		io.WriteString(w, ":"+n+"\n")
	}
}
