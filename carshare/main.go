// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command carshare serves a dashboard of car-sharing usage in
// Montreal over a month-long period.
//
// The map is drawn with Mapbox tiles, so carshare needs a Mapbox
// access token. By default it is read from .mapbox_token in the
// current directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aclements/go-dash/dash"
	"github.com/aclements/go-dash/dataset"
)

var (
	flagToken = flag.String("token", ".mapbox_token", "read the Mapbox access token from `file`")
	flagData  = flag.String("data", "", "load carshare.csv from `dir` instead of the built-in sample")
	dashFlags dash.Flags
)

func main() {
	log.SetPrefix("carshare: ")
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

	token, err := readToken(*flagToken)
	if err != nil {
		log.Fatal(err)
	}
	d, err := load(*flagData)
	if err != nil {
		log.Fatal(err)
	}
	v, err := newView(d, token)
	if err != nil {
		log.Fatal(err)
	}
	app := newApp(v, dash.Config{Debug: dashFlags.Debug})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.ListenAndServe(ctx, dashFlags.HTTP); err != nil {
		log.Fatal(err)
	}
}

// readToken reads a Mapbox access token from path.
func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading Mapbox token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%s: empty Mapbox token", path)
	}
	return token, nil
}

func load(dir string) (*dataset.Dataset, error) {
	if dir == "" {
		return dataset.Load("carshare")
	}
	return dataset.LoadDir(dir, "carshare")
}
