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

package vm_test

import (
	"os"
	"path/filepath"

	"github.com/db47h/metavm/asm"
	"github.com/db47h/metavm/vm"
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

// signExtend56 returns v truncated to a 56 bits two's complement integer.
func signExtend56(v int64) int64 {
	return v << 8 >> 8
}

var _ = Describe("Codec", func() {
	var code []vm.Instruction

	BeforeEach(func() {
		code = nil
		for k, op := range vm.Opcodes() {
			var arg int64
			if op.Arg() != vm.ArgNone {
				arg = int64(k*1000 - 12000)
			}
			code = append(code, vm.Instruction{Op: op, Arg: arg})
		}
	})

	It("should encode each instruction in 8 bytes, opcode first", func() {
		b := vm.Encode([]vm.Instruction{{Op: vm.OpPush, Arg: 0x0102030405}, {Op: vm.OpJmp, Arg: -2}})
		Expect(b).To(Equal([]byte{
			0x10, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05,
			0x17, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
		}))
	})

	It("should round trip all opcodes", func() {
		b := vm.Encode(code)
		Expect(b).To(HaveLen(len(code) * vm.InstructionSize))
		got, err := vm.Decode(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(code))
	})

	It("should round trip compiled programs", func() {
		prog, err := asm.Compile("push -1 :l push 36028797018963967 push -36028797018963968 jmp :l halt")
		Expect(err).NotTo(HaveOccurred())
		Expect(vm.CheckOperands(prog)).To(Succeed())
		got, err := vm.Decode(vm.Encode(prog))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(prog))
	})

	It("should truncate operands to 56 bits", func() {
		for _, v := range []int64{
			vm.MaxOperand + 1,
			vm.MinOperand - 1,
			1 << 62,
			-1 << 63,
			1<<63 - 1,
			0x7f12345678901234,
		} {
			prog := []vm.Instruction{{Op: vm.OpPush, Arg: v}}
			err := vm.CheckOperands(prog)
			Expect(errors.Cause(err)).To(Equal(vm.ErrOperandRange), "operand %d", v)
			got, err := vm.Decode(vm.Encode(prog))
			Expect(err).NotTo(HaveOccurred())
			Expect(got[0].Op).To(Equal(vm.OpPush))
			Expect(got[0].Arg).To(Equal(signExtend56(v)), "operand %d", v)
			Expect(got[0].Arg).NotTo(Equal(v))
		}
	})

	It("should reject lengths that are not a multiple of 8", func() {
		for _, n := range []int{1, 7, 9, 15} {
			_, err := vm.Decode(make([]byte, n))
			Expect(errors.Cause(err)).To(Equal(vm.ErrBadLength))
			Expect(err.Error()).To(ContainSubstring("%d bytes", n))
		}
		got, err := vm.Decode(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeEmpty())
	})

	It("should reject unknown opcodes", func() {
		b := vm.Encode(code)
		b[3*vm.InstructionSize] = 0x42
		_, err := vm.Decode(b)
		Expect(errors.Cause(err)).To(Equal(vm.ErrBadOpcode))
		Expect(err.Error()).To(ContainSubstring("0x42 at instruction 3"))

		_, err = vm.Decode(make([]byte, 8))
		Expect(errors.Cause(err)).To(Equal(vm.ErrBadOpcode))
	})

	Context("files", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("should save and load programs", func() {
			name := filepath.Join(dir, "prog.metabin")
			Expect(vm.Save(name, code)).To(Succeed())
			st, err := os.Stat(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size()).To(BeEquivalentTo(len(code) * vm.InstructionSize))

			got, err := vm.Load(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(code))
		})

		It("should refuse to save lossy operands", func() {
			name := filepath.Join(dir, "lossy.metabin")
			err := vm.Save(name, []vm.Instruction{{Op: vm.OpPush, Arg: 1 << 60}})
			Expect(errors.Cause(err)).To(Equal(vm.ErrOperandRange))
			_, err = os.Stat(name)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("should report decoding errors", func() {
			name := filepath.Join(dir, "bad.metabin")
			Expect(os.WriteFile(name, []byte{1, 2, 3}, 0644)).To(Succeed())
			_, err := vm.Load(name)
			Expect(errors.Cause(err)).To(Equal(vm.ErrBadLength))
			Expect(err.Error()).To(ContainSubstring("3 bytes"))

			_, err = vm.Load(filepath.Join(dir, "missing.metabin"))
			Expect(err).To(HaveOccurred())
			Expect(os.IsNotExist(errors.Cause(err))).To(BeTrue())
		})
	})
})

var _ = Describe("Tracer", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should be called before each instruction", func() {
		code, err := asm.Compile("push 2 push 3 add halt")
		Expect(err).NotTo(HaveOccurred())

		var depths []int
		record := func(pc int, ins vm.Instruction, stack []vm.Value) {
			depths = append(depths, len(stack))
		}
		gomock.InOrder(
			tracer.EXPECT().Step(0, code[0], gomock.Any()).Do(record),
			tracer.EXPECT().Step(1, code[1], gomock.Any()).Do(record),
			tracer.EXPECT().Step(2, code[2], gomock.Any()).Do(record),
			tracer.EXPECT().Step(3, code[3], gomock.Any()).Do(record),
		)

		i, err := vm.New(code, vm.Trace(tracer))
		Expect(err).NotTo(HaveOccurred())
		Expect(i.Run()).To(Succeed())
		Expect(depths).To(Equal([]int{0, 1, 2, 1}))
		Expect(i.Data()).To(Equal([]vm.Value{vm.Int(5)}))
	})

	It("should see the faulting instruction", func() {
		code, err := asm.Compile("push 5 push 0 div halt")
		Expect(err).NotTo(HaveOccurred())

		tracer.EXPECT().Step(gomock.Any(), gomock.Any(), gomock.Any()).Times(3)

		err = vm.Execute(code, GinkgoWriter, vm.Trace(tracer))
		Expect(errors.Cause(err)).To(Equal(vm.ErrDivByZero))
		Expect(vm.IsFatal(err)).To(BeFalse())
	})
})
