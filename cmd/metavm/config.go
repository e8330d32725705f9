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

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const configName = "metavm.toml"

// Config represents a metavm.toml configuration file.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Run     RunConfig     `toml:"run"`
	Compile CompileConfig `toml:"compile"`

	// Path is the configuration file path (set at load time, empty for the
	// default configuration).
	Path string `toml:"-"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// RunConfig configures program execution.
type RunConfig struct {
	Trace bool `toml:"trace"`
}

// CompileConfig configures the assembler output.
type CompileConfig struct {
	Extension string `toml:"extension"` // compiled program file extension
	Symbols   bool   `toml:"symbols"`   // write a symbol table next to compiled programs
}

func defaultConfig() *Config {
	return &Config{
		Compile: CompileConfig{Extension: binExt},
	}
}

// loadConfig parses the given configuration file.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read config")
	}
	c := defaultConfig()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}
	if c.Compile.Extension == "" {
		c.Compile.Extension = binExt
	}
	if c.Compile.Extension[0] != '.' {
		c.Compile.Extension = "." + c.Compile.Extension
	}
	c.Path = path
	return c, nil
}

// findConfig walks up from startDir to find a metavm.toml file, then loads and
// returns it. Returns the default configuration if no file is found.
func findConfig(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve path %s", startDir)
	}
	for {
		path := filepath.Join(dir, configName)
		if _, err := os.Stat(path); err == nil {
			return loadConfig(path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return defaultConfig(), nil
		}
		dir = parent
	}
}
