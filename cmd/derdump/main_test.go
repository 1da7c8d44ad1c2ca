// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

const testSchema = `
types:
  Record:
    sequence:
      - {name: id, type: INTEGER}
      - {name: name, type: UTF8String, optional: true}
      - {name: ok, type: BOOLEAN, default: false}
      - {name: data, type: OCTET STRING, optional: true}
      - {name: tags, type: {sequenceOf: IA5String}, optional: true}
`

// testRecord is the DER encoding of a Record with all components present.
var testRecord = []byte{
	0x30, 0x12,
	0x02, 0x01, 0x05,
	0x0C, 0x02, 0x68, 0x69,
	0x01, 0x01, 0xFF,
	0x04, 0x01, 0xFF,
	0x30, 0x03, 0x16, 0x01, 0x61,
}

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(testSchema), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runDump(t *testing.T, stdin []byte, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = runWithArgs(args, bytes.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_JSON(t *testing.T) {
	schema := writeSchema(t)
	code, stdout, stderr := runDump(t, testRecord, "-schema", schema, "-type", "Record")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	var got any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout)
	}
	want := map[string]any{
		"id":   float64(5),
		"name": "hi",
		"ok":   true,
		"data": "ff",
		"tags": []any{"a"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	last := -1
	for _, key := range []string{`"id"`, `"name"`, `"ok"`, `"data"`, `"tags"`} {
		i := strings.Index(stdout, key)
		if i < last {
			t.Errorf("component %s is out of declaration order:\n%s", key, stdout)
		}
		last = i
	}
}

func TestRun_Text(t *testing.T) {
	schema := writeSchema(t)
	code, stdout, stderr := runDump(t, testRecord, "-schema", schema, "-type", "Record", "-format", "text")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	want := `Record:
  id: 5
  name: "hi"
  ok: true
  data: FF
  tags:
    [0]: "a"
`
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Input(t *testing.T) {
	schema := writeSchema(t)
	file := filepath.Join(t.TempDir(), "record.der")
	if err := os.WriteFile(file, []byte{0x30, 0x03, 0x02, 0x01, 0x05}, 0o600); err != nil {
		t.Fatal(err)
	}
	tests := map[string]struct {
		stdin string
		args  []string
	}{
		"File":   {"", []string{file}},
		"Stdin":  {"\x30\x03\x02\x01\x05", []string{"-"}},
		"Hex":    {"30 03 02:01\n05\n", []string{"-input", "hex"}},
		"Base64": {"MAMC\nAQU=\n", []string{"-input", "base64"}},
		"PEM":    {"-----BEGIN RECORD-----\nMAMCAQU=\n-----END RECORD-----\n", []string{"-input", "pem"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"-schema", schema, "-type", "Record", "-format", "text"}, tt.args...)
			code, stdout, stderr := runDump(t, []byte(tt.stdin), args...)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr = %s", code, stderr)
			}
			if want := "Record:\n  id: 5\n  ok: false\n"; stdout != want {
				t.Errorf("output = %q, want %q", stdout, want)
			}
		})
	}
}

func TestRun_BER(t *testing.T) {
	schema := writeSchema(t)
	data := []byte{
		0x30, 0x80,
		0x02, 0x01, 0x05,
		0x24, 0x80, 0x04, 0x01, 0x01, 0x04, 0x01, 0x02, 0x00, 0x00,
		0x00, 0x00,
	}
	code, _, _ := runDump(t, data, "-schema", schema, "-type", "Record")
	if code != 1 {
		t.Errorf("DER exit code = %d, want 1", code)
	}
	code, stdout, stderr := runDump(t, data, "-schema", schema, "-type", "Record", "-ber", "-format", "text")
	if code != 0 {
		t.Fatalf("BER exit code = %d, stderr = %s", code, stderr)
	}
	if want := "Record:\n  id: 5\n  ok: false\n  data: 0102\n"; stdout != want {
		t.Errorf("output = %q, want %q", stdout, want)
	}
}

func TestRun_Lenient(t *testing.T) {
	schema := writeSchema(t)
	data := []byte{0x30, 0x06, 0x02, 0x01, 0x05, 0x01, 0x01, 0x01}

	code, _, stderr := runDump(t, data, "-schema", schema, "-type", "Record")
	if code != 1 {
		t.Errorf("strict exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "error decoding Record") {
		t.Errorf("stderr = %q, want a decoding error", stderr)
	}

	code, stdout, stderr := runDump(t, data, "-schema", schema, "-type", "Record", "-lenient", "-v", "-format", "text")
	if code != 0 {
		t.Fatalf("lenient exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "ok: true") {
		t.Errorf("stdout = %q, want ok: true", stdout)
	}
	if !strings.Contains(stderr, "non-canonical BOOLEAN") {
		t.Errorf("stderr = %q, want a debug record", stderr)
	}
}

func TestRun_Errors(t *testing.T) {
	schema := writeSchema(t)
	badSchema := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(badSchema, []byte("types:\n  A: Missing\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	tests := map[string]struct {
		stdin    []byte
		args     []string
		wantCode int
	}{
		"NoArgs":        {nil, nil, 2},
		"UnknownFlag":   {nil, []string{"-nope"}, 2},
		"MissingType":   {nil, []string{"-schema", schema}, 2},
		"TwoFiles":      {nil, []string{"-schema", schema, "-type", "Record", "a", "b"}, 2},
		"BadInput":      {nil, []string{"-schema", schema, "-type", "Record", "-input", "xml"}, 2},
		"BadFormat":     {nil, []string{"-schema", schema, "-type", "Record", "-format", "xml"}, 2},
		"BadDepth":      {nil, []string{"-schema", schema, "-type", "Record", "-max-depth", "0"}, 2},
		"UnknownType":   {testRecord, []string{"-schema", schema, "-type", "Nope"}, 1},
		"InvalidSchema": {testRecord, []string{"-schema", badSchema, "-type", "A"}, 1},
		"MissingSchema": {testRecord, []string{"-schema", filepath.Join(t.TempDir(), "missing.yaml"), "-type", "Record"}, 1},
		"MissingFile":   {nil, []string{"-schema", schema, "-type", "Record", filepath.Join(t.TempDir(), "missing.der")}, 1},
		"InvalidHex":    {[]byte("zz"), []string{"-schema", schema, "-type", "Record", "-input", "hex"}, 1},
		"NoPEMBlock":    {[]byte("MAMCAQU="), []string{"-schema", schema, "-type", "Record", "-input", "pem"}, 1},
		"InvalidBER":    {[]byte{0x30, 0x80, 0x02, 0x01, 0x05}, []string{"-schema", schema, "-type", "Record", "-ber"}, 1},
		"Trailing":      {append(bytes.Clone(testRecord), 0x00), []string{"-schema", schema, "-type", "Record"}, 1},
		"TooDeep":       {testRecord, []string{"-schema", schema, "-type", "Record", "-max-depth", "2"}, 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			code, stdout, stderr := runDump(t, tt.stdin, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d, stderr = %s", code, tt.wantCode, stderr)
			}
			if stdout != "" {
				t.Errorf("stdout = %q, want no output", stdout)
			}
			if stderr == "" {
				t.Errorf("stderr is empty, want an error message")
			}
		})
	}
}
