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

package merkle

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a root is requested for no leaves.
	ErrEmptyInput = errors.New("cannot calculate merkle root from empty input")

	// ErrInvalidEncoding matches any *InvalidEncodingError with errors.Is.
	ErrInvalidEncoding = errors.New("invalid leaf encoding")

	// ErrDigestLength is wrapped by an *InvalidEncodingError when strict
	// decoding finds a leaf of the wrong size.
	ErrDigestLength = errors.New("unexpected digest length")
)

const maxQuotedValue = 72

// InvalidEncodingError reports a leaf that could not be decoded.
type InvalidEncodingError struct {
	// Index is the position of the leaf in the input sequence.
	Index int
	// Value is the offending input string.
	Value string
	// Err is the underlying decode error.
	Err error
}

func (e *InvalidEncodingError) Error() string {
	value := e.Value
	if len(value) > maxQuotedValue {
		value = value[:maxQuotedValue] + "..."
	}
	return fmt.Sprintf("invalid hex string at position %d (%q): %v", e.Index, value, e.Err)
}

func (e *InvalidEncodingError) Unwrap() error {
	return e.Err
}

func (e *InvalidEncodingError) Is(target error) bool {
	return target == ErrInvalidEncoding
}
