// Package logger emits one JSON object per line for the few events the
// service reports with structure: dispatch summaries and lock or persistence
// warnings. Recipient addresses are personal data, so every value passes
// through redaction before it is written; code that logs with stdlib log
// calls RedactEmail itself.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects log output. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// Info writes an info entry. fields are alternating key, value pairs.
func Info(msg string, fields ...interface{}) { write("INFO", msg, fields) }

// Warn writes a warning entry.
func Warn(msg string, fields ...interface{}) { write("WARN", msg, fields) }

// Error writes an error entry.
func Error(msg string, fields ...interface{}) { write("ERROR", msg, fields) }

func write(level, msg string, fields []interface{}) {
	entry := map[string]string{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": level,
		"msg":   msg,
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		entry[key] = redactPIIValue(key, fmt.Sprintf("%v", fields[i+1]))
	}

	line, _ := json.Marshal(entry)
	mu.Lock()
	fmt.Fprintln(out, string(line))
	mu.Unlock()
}
