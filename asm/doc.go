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

// Package asm provides utility functions to assemble and disassemble metavm
// programs.
//
// Supported assembler mnemonics:
//
//	TOS is the value on top of the stack. NOS is the next value on the stack.
//	The "arg" column gives the operand expected after the mnemonic: none, an
//	integer (int) or an integer or label reference (addr).
//
//	opcode	asm	arg	stack	description
//	------	---	---	-----	------------------------------------------------------------------------
//	1	pop		n-	drop TOS
//	2	add		xy-z	add TOS to NOS and place result on TOS
//	3	inc		n-n	increment TOS
//	4	dec		n-n	decrement TOS
//	5	sub		xy-z	subtract TOS from NOS and place result on TOS
//	6	mul		xy-z	multiply NOS with TOS and place result on TOS
//	7	div		xy-z	divide NOS by TOS and place quotient on TOS
//	8	mod		xy-z	divide NOS by TOS and place remainder on TOS
//	9	print		n-	pop TOS and print it followed by a new line
//	10	halt			stop execution
//	11	dup		n-nn	duplicate TOS
//	12	dup2			reserved
//	13	swap			reserved
//	14	clear			reserved
//	15	over		xy-xyx	copy NOS on top of the stack
//	16	push	int	-n	place the operand on TOS
//	17	je	addr		reserved conditional jump
//	18	jn	addr		reserved conditional jump
//	19	jg	addr		reserved conditional jump
//	20	jl	addr		reserved conditional jump
//	21	jge	addr		reserved conditional jump
//	22	jle	addr		reserved conditional jump
//	23	jmp	addr		jump to the instruction at index addr
//	24	jz	addr		reserved conditional jump
//	25	jnz	addr		reserved conditional jump
//
// Reserved opcodes are assembled normally but fail at run time unless a
// handler has been bound to them with vm.BindHandler.
//
// Syntax:
//
// Input is split at white space (space, tab or new line) into tokens. There are
// no comments and line breaks carry no meaning: more than one instruction may
// appear on the same line. Each token is classified as follows:
//
//	- a mnemonic from the above table.
//	- an integer literal: a signed decimal integer, as accepted by
//	  strconv.ParseInt with base 10.
//	- a label: any token starting with a colon (:).
//
// Anything else is an error.
//
// Instructions and operands:
//
// Mnemonics without operand stand alone. "push" must be followed by an integer
// literal. Jump mnemonics must be followed by either an integer literal (the
// absolute index of the target instruction) or a label:
//
//	push 42
//	jmp 0
//	jmp :loop
//
// Labels:
//
// A label that does not follow a jump mnemonic declares the label. It is bound
// to the index of the next instruction. Forward references are ok and a label
// can be declared only once:
//
//	:loop	push 1 print
//		jmp :loop
//
//	jmp :end push 1 print :end halt
//
// In the last line, "jmp :end" compiles as "jmp 3".
//
// Instruction indexes, not byte offsets, are used as jump targets: the first
// instruction is at index 0, the next at index 1 and so on.
package asm
