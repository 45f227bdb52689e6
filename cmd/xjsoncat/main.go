// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Program xjsoncat reads a stream of JSON (or lenient JSON) values and
// copies each one to standard output, one per line.
//
// Grounded on the pack's jacoelho-rq/cmd/rq/main.go run()-int/os.Exit shape
// and its flag.FlagSet-based configuration.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/creachadair/xjson"

	"github.com/tailscale/hujson"
)

func main() { os.Exit(run()) }

func run() int {
	lenient := flag.Bool("lenient", false, "accept the lenient JSON superset (comments, unquoted keys, trailing commas, ...)")
	failOnUnknown := flag.Bool("fail-on-unknown", false, "reject skipping unrecognized names or values")
	strictOut := flag.Bool("strict-out", false, "rewrite lenient input as standard JSON on output")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, name := range args {
		if err := catOne(name, out, *lenient, *failOnUnknown, *strictOut); err != nil {
			fmt.Fprintf(os.Stderr, "xjsoncat: %s: %v\n", name, err)
			return 1
		}
	}
	return 0
}

// catOne streams every top-level value of one input to out, one per line.
func catOne(name string, out io.Writer, lenient, failOnUnknown, strictOut bool) error {
	in := io.Reader(os.Stdin)
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	r := xjson.NewReader(in)
	r.SetLenient(lenient)
	r.SetFailOnUnknown(failOnUnknown)

	for {
		kind, err := r.Peek()
		if err != nil {
			return err
		}
		if kind == xjson.EndDocument {
			return nil
		}
		if err := streamOne(r, out, strictOut); err != nil {
			return err
		}
		if _, err := io.WriteString(out, "\n"); err != nil {
			return err
		}
	}
}

// streamOne copies a single value from r to out, optionally standardizing
// lenient syntax into strict JSON on the way.
func streamOne(r *xjson.Reader, out io.Writer, strictOut bool) error {
	if !strictOut {
		return r.StreamValue(out)
	}

	var buf bytes.Buffer
	if err := r.StreamValue(&buf); err != nil {
		return err
	}
	std, err := hujson.Standardize(buf.Bytes())
	if err != nil {
		return err
	}
	_, err = out.Write(std)
	return err
}
