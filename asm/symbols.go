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

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Symbols is the symbol table of an assembled program. It is stored alongside
// compiled programs so that disassemblies can show label names.
type Symbols struct {
	Source string         `cbor:"1,keyasint,omitempty"` // source file name
	Labels map[string]int `cbor:"2,keyasint"`           // label name to instruction index
}

// canonical encoding so that the same program always yields the same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("asm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Symbols returns the symbol table of p. name is the source file name.
func (p *Program) Symbols(name string) *Symbols {
	return &Symbols{Source: name, Labels: p.Labels}
}

// MarshalSymbols serializes a symbol table to CBOR bytes.
func MarshalSymbols(s *Symbols) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSymbols deserializes a symbol table from CBOR bytes.
func UnmarshalSymbols(data []byte) (*Symbols, error) {
	var s Symbols
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "unmarshal symbols")
	}
	return &s, nil
}
