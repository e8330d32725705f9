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

package asm_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/db47h/metavm/asm"
)

func TestSymbols(t *testing.T) {
	p, err := asm.Assemble("loop.meta", bytes.NewBufferString(":top push 1 print jmp :top :b :a halt"))
	if err != nil {
		t.Fatal(err)
	}
	s := p.Symbols("loop.meta")
	data, err := asm.MarshalSymbols(s)
	if err != nil {
		t.Fatal(err)
	}
	// canonical encoding
	for n := 0; n < 10; n++ {
		d, err := asm.MarshalSymbols(p.Symbols("loop.meta"))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(d, data) {
			t.Fatalf("Non deterministic encoding: %x != %x", d, data)
		}
	}
	got, err := asm.UnmarshalSymbols(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Expected %+v, got %+v", s, got)
	}
	if got.Labels["a"] != 3 || got.Labels["top"] != 0 {
		t.Errorf("Bad labels: %v", got.Labels)
	}

	if _, err = asm.UnmarshalSymbols([]byte{0xff, 0x00}); err == nil || !strings.HasPrefix(err.Error(), "unmarshal symbols: ") {
		t.Errorf("Expected unmarshal error on garbage input, got %v", err)
	}
}
