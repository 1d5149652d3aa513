// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command election serves a dashboard of the results of the 2013
// Montreal mayoral election.
//
// Selecting a district in the results table shows its votes for each
// candidate. The candidate and result controls pick which votes the
// per-district charts show.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aclements/go-dash/dash"
	"github.com/aclements/go-dash/dataset"
)

var (
	flagData  = flag.String("data", "", "load election.csv from `dir` instead of the built-in sample")
	dashFlags dash.Flags
)

func main() {
	log.SetPrefix("election: ")
	log.SetFlags(0)

	dashFlags.Register(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Flags may also be given in $%s.\n\n", dash.EnvFlags)
		flag.PrintDefaults()
	}
	if err := dash.ParseFlags(flag.CommandLine, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(2)
	}

	var d *dataset.Dataset
	var err error
	if *flagData == "" {
		d, err = dataset.Load("election")
	} else {
		d, err = dataset.LoadDir(*flagData, "election")
	}
	if err != nil {
		log.Fatal(err)
	}
	if d.Len() == 0 {
		log.Fatal("election dataset has no rows")
	}
	app := newApp(newView(d), dash.Config{Debug: dashFlags.Debug})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.ListenAndServe(ctx, dashFlags.HTTP); err != nil {
		log.Fatal(err)
	}
}
