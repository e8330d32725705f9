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
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
	})

	write := func(path, content string) {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	}

	It("should load all sections", func() {
		path := filepath.Join(root, configName)
		write(path, `
[log]
verbosity = 2
file = "vm.log"

[run]
trace = true

[compile]
extension = "bc"
symbols = true
`)
		c, err := loadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Log).To(Equal(LogConfig{Verbosity: 2, File: "vm.log"}))
		Expect(c.Run.Trace).To(BeTrue())
		Expect(c.Compile).To(Equal(CompileConfig{Extension: ".bc", Symbols: true}))
		Expect(c.Path).To(Equal(path))
	})

	It("should use defaults for missing keys", func() {
		path := filepath.Join(root, configName)
		write(path, "[run]\ntrace = true\n")
		c, err := loadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Compile.Extension).To(Equal(binExt))
		Expect(c.Compile.Symbols).To(BeFalse())
		Expect(c.Log.Verbosity).To(BeZero())
	})

	It("should report parse errors", func() {
		path := filepath.Join(root, configName)
		write(path, "[run\ntrace = ")
		_, err := loadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("parse error in " + path)))

		_, err = loadConfig(filepath.Join(root, "missing.toml"))
		Expect(err).To(HaveOccurred())
	})

	It("should find the closest configuration file", func() {
		write(filepath.Join(root, configName), "[compile]\nsymbols = true\n")
		sub := filepath.Join(root, "a", "b")
		Expect(os.MkdirAll(sub, 0755)).To(Succeed())

		c, err := findConfig(sub)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Compile.Symbols).To(BeTrue())
		Expect(c.Path).To(Equal(filepath.Join(root, configName)))

		write(filepath.Join(root, "a", configName), "[run]\ntrace = true\n")
		c, err = findConfig(sub)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Run.Trace).To(BeTrue())
		Expect(c.Compile.Symbols).To(BeFalse())
	})

	It("should drive the compiled file name", func() {
		c := defaultConfig()
		o := &options{file: filepath.Join(root, "prog.meta"), cfg: c}
		Expect(o.outputName()).To(Equal(filepath.Join(root, "prog.metabin")))
		c.Compile.Extension = ".bc"
		Expect(o.outputName()).To(Equal(filepath.Join(root, "prog.bc")))
		o.out = "x.out"
		Expect(o.outputName()).To(Equal("x.out"))
		Expect(symbolsName(o.outputName())).To(Equal("x.metasym"))
	})
})
