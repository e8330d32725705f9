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
	"fmt"
	"io"
	"strconv"
	"text/scanner"
	"unicode"

	"github.com/db47h/metavm/vm"
)

func isIdentRune(ch rune, i int) bool {
	return unicode.IsLetter(ch) || unicode.IsSymbol(ch) || unicode.IsPunct(ch) || unicode.IsDigit(ch)
}

// TokenKind is the kind of a lexical token.
type TokenKind int

// Token kinds.
const (
	TokUnknown TokenKind = iota
	TokOp
	TokInt
	TokLabel
)

var tokenKinds = [...]string{"unknown", "opcode", "integer", "label"}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKinds) {
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKinds[k]
}

// Token is a lexical token.
type Token struct {
	Kind  TokenKind
	Text  string    // source text
	Op    vm.Opcode // TokOp only
	Value int64     // TokInt only
	Name  string    // TokLabel only, without the ':' prefix
	Pos   scanner.Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Pos, t.Kind, t.Text)
}

// classify returns a token for the given lexeme. Mnemonics take precedence
// over integers, integers over labels.
func classify(s string, pos scanner.Position) Token {
	t := Token{Text: s, Pos: pos}
	if op, ok := vm.Lookup(s); ok {
		t.Kind, t.Op = TokOp, op
		return t
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Kind, t.Value = TokInt, n
		return t
	}
	if len(s) > 0 && s[0] == ':' {
		t.Kind, t.Name = TokLabel, s[1:]
	}
	return t
}

// lex splits the input at white space and classifies the resulting tokens.
// It stops at the first unrecognized lexeme.
func lex(name string, r io.Reader) ([]Token, error) {
	var (
		s    scanner.Scanner
		err  error
		toks []Token
	)
	s.Init(r)
	s.Error = func(s *scanner.Scanner, msg string) {
		if err == nil {
			pos := s.Position
			if !pos.IsValid() {
				pos = s.Pos()
			}
			err = &Error{Pos: pos, Kind: ErrSyntax, Name: msg}
		}
	}
	s.IsIdentRune = isIdentRune
	s.Mode = scanner.ScanIdents
	s.Whitespace = scanner.GoWhitespace | 1<<'\v' | 1<<'\f'
	s.Filename = name

	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		if err != nil {
			return nil, err
		}
		if tok != scanner.Ident && unicode.IsSpace(tok) {
			// unicode white space outside of the ASCII range
			continue
		}
		text := s.TokenText()
		if tok != scanner.Ident {
			return nil, &Error{Pos: s.Position, Kind: ErrUnexpectedToken, Name: text}
		}
		t := classify(text, s.Position)
		switch {
		case t.Kind == TokUnknown:
			return nil, &Error{Pos: t.Pos, Kind: ErrUnexpectedToken, Name: text}
		case t.Kind == TokLabel && t.Name == "":
			return nil, &Error{Pos: t.Pos, Kind: ErrEmptyLabel, Name: text}
		}
		toks = append(toks, t)
	}
	if err != nil {
		return nil, err
	}
	return toks, nil
}

// operand is the operand of an instruction during compilation: either absent,
// an integer or an unresolved label reference.
type operand struct {
	kind  TokenKind // TokUnknown (absent), TokInt or TokLabel
	value int64
	label Token
}

type instruction struct {
	op  vm.Opcode
	arg operand
}

type parser struct {
	toks   []Token
	code   []instruction
	labels map[string]Token // declarations, Token.Value holds the address
}

func newParser(toks []Token) *parser {
	return &parser{
		toks:   toks,
		labels: make(map[string]Token),
	}
}

// scan does the first pass: it emits instructions and records label
// declarations.
func (p *parser) scan() error {
	for tail := p.toks; len(tail) > 0; {
		t := tail[0]
		switch t.Kind {
		case TokLabel:
			if prev, ok := p.labels[t.Name]; ok {
				return &Error{Pos: t.Pos, Kind: ErrDuplicateLabel, Name: t.Name, Prev: prev.Pos}
			}
			t.Value = int64(len(p.code))
			p.labels[t.Name] = t
			tail = tail[1:]
			continue
		case TokOp:
		default:
			return &Error{Pos: t.Pos, Kind: ErrUnexpectedToken, Name: t.Text}
		}

		arg := t.Op.Arg()
		if arg == vm.ArgNone {
			p.code = append(p.code, instruction{op: t.Op})
			tail = tail[1:]
			continue
		}
		if len(tail) < 2 {
			return &Error{Pos: t.Pos, Kind: ErrMissingOperand, Name: t.Text}
		}
		a := tail[1]
		switch {
		case a.Kind == TokInt:
			p.code = append(p.code, instruction{t.Op, operand{kind: TokInt, value: a.Value}})
		case a.Kind == TokLabel && arg == vm.ArgIntOrLabel:
			p.code = append(p.code, instruction{t.Op, operand{kind: TokLabel, label: a}})
		default:
			return &Error{Pos: a.Pos, Kind: ErrUnexpectedToken, Name: a.Text}
		}
		tail = tail[2:]
	}
	return nil
}

// resolve does the second pass: it replaces label references with the address
// of the corresponding declaration.
func (p *parser) resolve() error {
	for k := range p.code {
		arg := &p.code[k].arg
		if arg.kind != TokLabel {
			continue
		}
		decl, ok := p.labels[arg.label.Name]
		if !ok {
			return &Error{Pos: arg.label.Pos, Kind: ErrUndefinedLabel, Name: arg.label.Name}
		}
		arg.kind, arg.value = TokInt, decl.Value
	}
	return nil
}

// concrete returns the compiled program. It panics if any label reference is
// left unresolved.
func (p *parser) concrete() []vm.Instruction {
	code := make([]vm.Instruction, len(p.code))
	for k, ins := range p.code {
		switch ins.arg.kind {
		case TokInt:
			code[k] = vm.Instruction{Op: ins.op, Arg: ins.arg.value}
		case TokUnknown:
			code[k] = vm.Instruction{Op: ins.op}
		default:
			panic(fmt.Sprintf("asm: unresolved operand %v in concretization step", ins.arg.label))
		}
	}
	return code
}

func (p *parser) symbols() map[string]int {
	if len(p.labels) == 0 {
		return nil
	}
	m := make(map[string]int, len(p.labels))
	for n, l := range p.labels {
		m[n] = int(l.Value)
	}
	return m
}
