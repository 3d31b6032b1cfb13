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

package log

import (
	"bytes"
	"io"
)

// writer buffers a whole trace so it reaches the output in a single Write.
type writer struct {
	buf bytes.Buffer
	out io.Writer
}

func newWriter(w io.Writer) *writer {
	return &writer{out: w}
}

func (w *writer) WriteByte(c byte) error {
	return w.buf.WriteByte(c)
}

func (w *writer) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

func (w *writer) Flush() (err error) {
	_, err = w.out.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}
