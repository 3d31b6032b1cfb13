/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package codec reads lists of encoded leaf digests from the supported
// input formats. It only splits the input into strings; the digests
// themselves are decoded by the merkle package.
package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strings"

	"github.com/fxamacker/cbor/v2"
	msgpack "github.com/hashicorp/go-msgpack/codec"
	jsoniter "github.com/json-iterator/go"
)

// Names of the supported formats.
const (
	Text    = "text"
	JSON    = "json"
	CBOR    = "cbor"
	Msgpack = "msgpack"
)

// ErrUnknownFormat is returned by New for unsupported formats.
var ErrUnknownFormat = errors.New("unknown format")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Codec extracts the leaf strings from an encoded list.
type Codec interface {
	Name() string
	Leaves(r io.Reader) ([]string, error)
}

// New returns the codec for the named format. An empty name selects Text.
func New(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Text:
		return textCodec{}, nil
	case JSON:
		return jsonCodec{}, nil
	case CBOR:
		return cborCodec{}, nil
	case Msgpack:
		return msgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Formats lists the names accepted by New.
func Formats() []string {
	return []string{Text, JSON, CBOR, Msgpack}
}

// textCodec reads one leaf per line. Surrounding blanks are trimmed, and
// empty lines or lines starting with '#' are skipped.
type textCodec struct{}

func (textCodec) Name() string { return Text }

func (textCodec) Leaves(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	leaves := make([]string, 0)
	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if first {
			line = bytes.TrimPrefix(line, bom)
			first = false
		}
		s := strings.TrimSpace(string(line))
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		leaves = append(leaves, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("decoding %s leaves: %w", Text, err)
	}
	return leaves, nil
}

// jsonCodec reads a JSON array of strings.
type jsonCodec struct{}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (jsonCodec) Name() string { return JSON }

func (jsonCodec) Leaves(r io.Reader) ([]string, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, bom)

	var leaves []string
	if err := json.Unmarshal(b, &leaves); err != nil {
		return nil, fmt.Errorf("decoding %s leaves: %w", JSON, err)
	}
	return leaves, nil
}

// cborCodec reads a CBOR array of text strings.
type cborCodec struct{}

func (cborCodec) Name() string { return CBOR }

func (cborCodec) Leaves(r io.Reader) ([]string, error) {
	var leaves []string
	if err := cbor.NewDecoder(r).Decode(&leaves); err != nil {
		return nil, fmt.Errorf("decoding %s leaves: %w", CBOR, err)
	}
	return leaves, nil
}

// msgpackCodec reads a msgpack array of strings.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return Msgpack }

func (msgpackCodec) Leaves(r io.Reader) ([]string, error) {
	var leaves []string
	if err := msgpack.NewDecoder(r, &msgpack.MsgpackHandle{}).Decode(&leaves); err != nil {
		return nil, fmt.Errorf("decoding %s leaves: %w", Msgpack, err)
	}
	return leaves, nil
}
