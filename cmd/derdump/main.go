// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command derdump decodes a DER encoded data value against a type defined in a
// YAML module and prints the decoded value.
//
// Usage:
//
//	derdump -schema <module.yaml> -type <name> [flags] [file]
//
// The input is read from file or, if file is omitted or "-", from standard
// input. It may be raw DER, hexadecimal, base64 or a PEM block. With -ber the
// input may use the Basic Encoding Rules and is converted to DER first. The
// decoded value is printed as JSON or as an indented text tree. Decoding is
// strict unless -lenient is given.
//
// The exit code is 0 on success, 1 if the module cannot be loaded or the input
// cannot be decoded, and 2 on invalid usage.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"codello.dev/der"
	"codello.dev/der/ber"
	"codello.dev/der/schemadef"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("derdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", "", "path to the YAML module defining the type")
	typeName := fs.String("type", "", "name of the type to decode")
	lenient := fs.Bool("lenient", false, "tolerate non-canonical BOOLEAN values and failed defined-by decoding")
	inputFormat := fs.String("input", "der", "input encoding: der, hex, base64 or pem")
	berInput := fs.Bool("ber", false, "convert BER input to DER before decoding")
	outputFormat := fs.String("format", "json", "output format: json or text")
	maxDepth := fs.Int("max-depth", der.DefaultMaxDepth, "maximum nesting depth")
	verbose := fs.Bool("v", false, "log tolerated deviations to standard error")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: derdump -schema <module.yaml> -type <name> [flags] [file]\n\n"),
			writeln(stderr, "Decodes a DER data value against a type of a YAML module."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	usage := func(msg string) int {
		if err := writeln(stderr, "error:", msg); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	if *schemaPath == "" || *typeName == "" {
		return usage("-schema and -type are required")
	}
	if fs.NArg() > 1 {
		return usage("at most one input file is allowed")
	}
	decodeInput, ok := inputDecoders[*inputFormat]
	if !ok {
		return usage(fmt.Sprintf("unknown input format %q", *inputFormat))
	}
	render, ok := renderers[*outputFormat]
	if !ok {
		return usage(fmt.Sprintf("unknown output format %q", *outputFormat))
	}
	if *maxDepth <= 0 {
		return usage("-max-depth must be positive")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	typ, err := loadType(*schemaPath, *typeName)
	if err != nil {
		_ = writef(stderr, "error loading schema: %v\n", err)
		return 1
	}
	logger.Debug("loaded type", slog.String("type", typ.Name()), slog.String("kind", typ.Kind().String()))

	raw, err := readInput(fs.Arg(0), stdin)
	if err != nil {
		_ = writef(stderr, "error reading input: %v\n", err)
		return 1
	}
	data, err := decodeInput(raw)
	if err != nil {
		_ = writef(stderr, "error reading %s input: %v\n", *inputFormat, err)
		return 1
	}
	if *berInput {
		n := len(data)
		if data, err = (ber.Options{MaxDepth: *maxDepth}).ToDER(data); err != nil {
			_ = writef(stderr, "error converting BER input: %v\n", err)
			return 1
		}
		logger.Debug("converted BER input", slog.Int("ber", n), slog.Int("der", len(data)))
	}

	opts := der.Options{Strict: !*lenient, MaxDepth: *maxDepth, Logger: logger}
	v, err := opts.Decode(typ, data)
	if err != nil {
		_ = writef(stderr, "error decoding %s: %v\n", typ.Name(), err)
		return 1
	}
	logger.Debug("decoded value", slog.String("type", typ.Name()), slog.Int("bytes", len(data)))

	if err = render(stdout, v); err != nil {
		_ = writef(stderr, "error writing output: %v\n", err)
		return 1
	}
	return 0
}

// loadType loads the module at path and returns the named type.
func loadType(path, name string) (*der.Type, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := schemadef.Load(f)
	if err != nil {
		return nil, err
	}
	return m.Type(name)
}

// readInput reads the file at path or stdin if path is empty or "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
