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
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/db47h/metavm/asm"
	"github.com/db47h/metavm/vm"
	"github.com/pkg/errors"
	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const (
	srcExt = ".meta"
	binExt = ".metabin"
	symExt = ".metasym"
)

var log = commonlog.GetLogger("metavm")

// usageError is returned for invalid command line arguments.
type usageError string

func (e usageError) Error() string { return string(e) }

type options struct {
	file      string
	compile   bool
	exec      bool
	decompile bool
	out       string
	trace     bool
	cfg       *Config
}

// outputName returns the name of the compiled program file.
func (o *options) outputName() string {
	if o.out != "" {
		return o.out
	}
	return strings.TrimSuffix(o.file, filepath.Ext(o.file)) + o.cfg.Compile.Extension
}

func symbolsName(binName string) string {
	return strings.TrimSuffix(binName, filepath.Ext(binName)) + symExt
}

func compile(o *options) (*asm.Program, error) {
	if filepath.Ext(o.file) == binExt || filepath.Ext(o.file) == o.cfg.Compile.Extension {
		return nil, usageError(fmt.Sprintf("%s file supplied, refusing to compile bytecode. Did you mean to execute it?", filepath.Ext(o.file)))
	}
	f, err := os.Open(o.file)
	if err != nil {
		return nil, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	p, err := asm.Assemble(o.file, bufio.NewReader(f), asm.WithObserver(logObserver{log}))
	if err != nil {
		return nil, errors.Wrapf(err, "error compiling '%s'", o.file)
	}
	log.Infof("compiled %s: %d instructions, %d labels", o.file, len(p.Code), len(p.Labels))
	return p, nil
}

func load(o *options) (*asm.Program, error) {
	if filepath.Ext(o.file) == srcExt {
		return nil, usageError(fmt.Sprintf("%s file supplied, failed to execute source file. Did you mean to compile it?", srcExt))
	}
	code, err := vm.Load(o.file)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading '%s'", o.file)
	}
	p := &asm.Program{Code: code}
	data, err := os.ReadFile(symbolsName(o.file))
	switch {
	case err == nil:
		s, err := asm.UnmarshalSymbols(data)
		if err != nil {
			log.Warningf("ignoring symbols for %s: %v", o.file, err)
			break
		}
		p.Labels = s.Labels
	case !os.IsNotExist(err):
		log.Warningf("ignoring symbols for %s: %v", o.file, err)
	}
	log.Infof("loaded %s: %d instructions", o.file, len(code))
	return p, nil
}

func save(o *options, p *asm.Program) error {
	name := o.outputName()
	if err := vm.Save(name, p.Code); err != nil {
		return errors.Wrapf(err, "error saving '%s'", name)
	}
	log.Infof("wrote %s", name)
	if !o.cfg.Compile.Symbols {
		return nil
	}
	data, err := asm.MarshalSymbols(p.Symbols(o.file))
	if err != nil {
		return err
	}
	sName := symbolsName(name)
	if err = os.WriteFile(sName, data, 0644); err != nil {
		return errors.Wrap(err, "write failed")
	}
	log.Infof("wrote %s", sName)
	return nil
}

// run compiles, loads, runs or disassembles o.file. Program output and
// disassemblies go to stdout, traces to stderr.
func run(o *options, stdout, stderr io.Writer) error {
	if !o.compile && !o.exec && !o.decompile {
		return usageError("one of -compile, -exec or -decompile is required")
	}
	var (
		p   *asm.Program
		err error
	)
	if o.compile {
		p, err = compile(o)
	} else {
		p, err = load(o)
	}
	if err != nil {
		return err
	}

	if o.decompile {
		if err = asm.DisassembleAll(p.Code, p.Labels, stdout); err != nil {
			return err
		}
	}

	if o.exec {
		opts := []vm.Option{vm.Output(stdout)}
		if o.trace {
			opts = append(opts, vm.Trace(newStackTracer(stderr)))
		}
		i, err := vm.New(p.Code, opts...)
		if err != nil {
			return err
		}
		err = i.Run()
		log.Infof("executed %d instructions", i.InstructionCount())
		if err != nil {
			if vm.IsFatal(err) {
				return errors.Wrap(err, "execution aborted")
			}
			return errors.Wrap(err, "runtime error")
		}
		return nil
	}

	if o.compile && !o.decompile {
		return save(o, p)
	}
	return nil
}

func atExit(err error, debug bool) {
	if err == nil {
		atexit.Exit(0)
	}
	if debug {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if _, ok := errors.Cause(err).(usageError); ok {
		atexit.Exit(2)
	}
	atexit.Exit(1)
}

func main() {
	var err error
	var o options

	stdout := bufio.NewWriter(os.Stdout)
	atexit.Register(func() { stdout.Flush() })

	var debug bool
	var verbosity int
	var configFile string
	flag.BoolVar(&o.compile, "compile", false, "compile the source `file`")
	flag.BoolVar(&o.exec, "exec", false, "execute the program (compiled on the fly with -compile)")
	flag.BoolVar(&o.decompile, "decompile", false, "print a disassembly of the program")
	flag.StringVar(&o.out, "o", "", "`filename` to use when saving the compiled program")
	flag.BoolVar(&o.trace, "trace", false, "trace execution on stderr")
	flag.IntVar(&verbosity, "v", 0, "log verbosity")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	flag.StringVar(&configFile, "config", "", "load configuration from `filename` instead of "+configName)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] file\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	defer func() { atExit(err, debug) }()

	if flag.NArg() != 1 {
		flag.Usage()
		err = usageError("expected exactly one file argument")
		return
	}
	o.file = flag.Arg(0)

	if configFile != "" {
		o.cfg, err = loadConfig(configFile)
	} else {
		o.cfg, err = findConfig(filepath.Dir(o.file))
	}
	if err != nil {
		return
	}

	// command line flags override the configuration file
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["trace"] {
		o.trace = o.cfg.Run.Trace
	}
	if !set["v"] {
		verbosity = o.cfg.Log.Verbosity
	}
	var logFile *string
	if o.cfg.Log.File != "" {
		logFile = &o.cfg.Log.File
	}
	commonlog.Configure(verbosity, logFile)
	if o.cfg.Path != "" {
		log.Infof("using configuration %s", o.cfg.Path)
	}

	err = run(&o, stdout, os.Stderr)
}
