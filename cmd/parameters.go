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

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
)

const (
	errUnknownOutput = "unknown output format"
	errEmptyPath     = "empty path"
	errArgsAndFile   = "leaves given both as arguments and with --file"
)

// Receipt output formats.
const (
	outputText    = "text"
	outputJSON    = "json"
	outputMsgpack = "msgpack"
)

// validateOutput checks that output names a receipt output format.
func validateOutput(output string) error {
	switch strings.ToLower(output) {
	case outputText, outputJSON, outputMsgpack:
		return nil
	default:
		return fmt.Errorf("%s %q", errUnknownOutput, output)
	}
}

// openInput opens path for reading, "-" meaning stdin. The returned
// closer must be called once done.
func openInput(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("%s", errEmptyPath)
	}
	if path == "-" {
		return stdin, func() error { return nil }, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
