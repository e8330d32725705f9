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

// Stack is the operand stack of an Instance. The zero value is an empty stack
// ready to use.
type Stack struct {
	data []Value
}

// Depth returns the number of values on the stack.
func (s *Stack) Depth() int {
	return len(s.data)
}

// Push pushes v on top of the stack.
func (s *Stack) Push(v Value) {
	s.data = append(s.data, v)
}

// Pop removes the value on top of the stack and returns it.
func (s *Stack) Pop() (Value, error) {
	l := len(s.data) - 1
	if l < 0 {
		return Value{}, ErrStackEmpty
	}
	v := s.data[l]
	s.data = s.data[:l]
	return v, nil
}

// Peek returns the n-th value from the top of the stack without removing it.
// Peek(0) is the top of the stack.
func (s *Stack) Peek(n int) (Value, error) {
	if n < 0 || n >= len(s.data) {
		return Value{}, ErrStackEmpty
	}
	return s.data[len(s.data)-1-n], nil
}

// top returns a pointer to the value on top of the stack or nil if the stack
// is empty.
func (s *Stack) top() *Value {
	if len(s.data) == 0 {
		return nil
	}
	return &s.data[len(s.data)-1]
}

// Values returns the stack contents from bottom to top. The returned slice is
// a copy.
func (s *Stack) Values() []Value {
	if len(s.data) == 0 {
		return nil
	}
	return append([]Value(nil), s.data...)
}

// Clear removes all values from the stack.
func (s *Stack) Clear() {
	s.data = s.data[:0]
}
