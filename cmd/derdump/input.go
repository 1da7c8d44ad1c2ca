// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"strings"
	"unicode"
)

// inputDecoders convert the contents of an input file into DER bytes.
var inputDecoders = map[string]func([]byte) ([]byte, error){
	"der":    func(b []byte) ([]byte, error) { return b, nil },
	"hex":    decodeHex,
	"base64": decodeBase64,
	"pem":    decodePEM,
}

// decodeHex decodes hexadecimal digits. Whitespace and colons between bytes
// are ignored.
func decodeHex(b []byte) ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == ':' {
			return -1
		}
		return r
	}, string(b))
	return hex.DecodeString(s)
}

// decodeBase64 decodes standard base64. Whitespace is ignored.
func decodeBase64(b []byte) ([]byte, error) {
	s := strings.Join(strings.Fields(string(b)), "")
	return base64.StdEncoding.DecodeString(s)
}

// decodePEM returns the contents of the first PEM block.
func decodePEM(b []byte) ([]byte, error) {
	block, _ := pem.Decode(bytes.TrimSpace(b))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	return block.Bytes, nil
}
