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

// The metavm command line tool compiles metavm assembly source files (.meta) to
// bytecode (.metabin) and runs or disassembles bytecode files.
//
// Usage:
//
//	metavm [options] file
//
//	-compile
//		  compile the source file
//	-config filename
//		  load configuration from filename instead of metavm.toml
//	-debug
//		  enable debug diagnostics
//	-decompile
//		  print a disassembly of the program
//	-exec
//		  execute the program (compiled on the fly with -compile)
//	-o filename
//		  filename to use when saving the compiled program
//	-trace
//		  trace execution on stderr
//	-v int
//		  log verbosity
//
// -compile: assembles the given source file. Unless -exec or -decompile is
// also given, the program is saved next to the source file, with the .metabin
// extension. Files with the .metabin extension are refused.
//
// -exec: runs the program. Without -compile, the file is loaded as bytecode and
// files with the .meta extension are refused. The output of print instructions
// goes to stdout.
//
// -decompile: writes a disassembly of the program to stdout. The disassembly
// is valid assembly source. If a symbol table (.metasym) is found next to a
// bytecode file, label names are restored.
//
// -trace: writes the stack contents and the current instruction to stderr
// before each step.
//
// -debug: will print a full stacktrace on errors.
//
// Configuration:
//
// Unless -config is given, metavm looks for a metavm.toml file in the directory
// of the input file and its parents. Command line flags take precedence over
// the configuration file:
//
//	[log]
//	verbosity = 0		# log verbosity, like -v
//	file = "metavm.log"	# log file, defaults to stderr
//
//	[run]
//	trace = false		# like -trace
//
//	[compile]
//	extension = ".metabin"	# extension of compiled programs
//	symbols = true		# write a .metasym symbol table with compiled programs
//
// Exit status is 0 on success, 1 on compilation, I/O or runtime errors and 2
// on usage errors.
package main
