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
	"io"
	"os"
	"sync"
)

// DefaultTimeFormat to use for logging. This is a version of RFC3339 that contains
// millisecond precision.
const DefaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	defLock   sync.Mutex
	defLogger Logger

	// DefaultOutput is used as the default log output.
	DefaultOutput io.Writer = os.Stderr

	// DefaultLevel is used as the default log level.
	DefaultLevel = Off
)

// Default returns the process wide logger, creating it on first use with
// DefaultLevel and DefaultOutput.
func Default() Logger {
	defLock.Lock()
	defer defLock.Unlock()
	if defLogger == nil {
		defLogger = New(&LoggerOptions{
			Level:  DefaultLevel,
			Output: DefaultOutput,
		})
	}
	return defLogger
}

// L is a shorthand for Default.
func L() Logger {
	return Default()
}

// SetDefault replaces the process wide logger and returns the previous one.
func SetDefault(log Logger) Logger {
	defLock.Lock()
	defer defLock.Unlock()
	prev := defLogger
	defLogger = log
	return prev
}
