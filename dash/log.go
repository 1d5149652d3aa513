// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dash

import (
	"os"
	"sync"

	"golang.org/x/crypto/ssh/terminal"
)

const (
	boldRed = "\x1b[1;31m"
	reset   = "\x1b[0m"
)

var (
	vt100Once sync.Once
	vt100     bool
)

// highlight wraps msg in VT100 color codes if stderr is a terminal.
func highlight(msg string) string {
	vt100Once.Do(func() {
		term := os.Getenv("TERM")
		vt100 = term != "" && term != "dumb" && terminal.IsTerminal(int(os.Stderr.Fd()))
	})
	if !vt100 {
		return msg
	}
	return boldRed + msg + reset
}
