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

package main

import (
	"io"
	"strconv"

	"github.com/db47h/metavm/asm"
	"github.com/db47h/metavm/internal/ewr"
	"github.com/db47h/metavm/vm"
	"github.com/tliron/commonlog"
)

// stackTracer writes the stack contents and the next instruction before each
// step:
//
//	>> Stack: (bottom) 2 3 (top)
//	> 2 add
type stackTracer struct {
	w *ewr.ErrWriter
}

func newStackTracer(w io.Writer) *stackTracer {
	return &stackTracer{ewr.New(w)}
}

func (t *stackTracer) Step(pc int, ins vm.Instruction, stack []vm.Value) {
	t.w.WriteString(">> Stack: (bottom) ")
	if len(stack) > 0 {
		ewr.Join(t.w, stack, " ")
		t.w.WriteString(" ")
	}
	t.w.WriteString("(top)\n> ")
	t.w.WriteString(strconv.Itoa(pc))
	t.w.WriteString(" ")
	t.w.WriteString(ins.String())
	t.w.WriteString("\n")
}

// logObserver dumps the assembler tokens and output to a logger at debug
// level.
type logObserver struct {
	log commonlog.Logger
}

func (o logObserver) Tokens(toks []asm.Token) {
	for _, t := range toks {
		o.log.Debugf("token: %v", t)
	}
}

func (o logObserver) Code(code []vm.Instruction) {
	for pc, ins := range code {
		o.log.Debugf("code: %4d %v", pc, ins)
	}
}
