// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dash

import (
	"flag"
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"
)

// EnvFlags is the environment variable holding extra command-line
// arguments for every dashboard.
const EnvFlags = "GO_DASH_FLAGS"

// Flags are the command-line flags common to every dashboard.
type Flags struct {
	HTTP  string
	Debug bool
}

// Register defines the flags in fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.HTTP, "http", "localhost:8050", "serve HTTP on `address`")
	fs.BoolVar(&f.Debug, "debug", false, "reload the page on restart and show callback errors")
}

// ParseFlags parses args with fs, after any arguments in $GO_DASH_FLAGS.
// Arguments in the environment are split like a shell would.
func ParseFlags(fs *flag.FlagSet, args []string) error {
	env, err := shellquote.Split(os.Getenv(EnvFlags))
	if err != nil {
		return fmt.Errorf("parsing $%s: %w", EnvFlags, err)
	}
	return fs.Parse(append(env, args...))
}
