// Package output writes inventory documents.
package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
)

// JSONWriter encodes values as a single JSON document followed by a newline
type JSONWriter struct {
	w      io.Writer
	indent int
}

// NewJSONWriter creates a writer. indent <= 0 writes compact JSON.
func NewJSONWriter(w io.Writer, indent int) *JSONWriter {
	return &JSONWriter{w: w, indent: indent}
}

// Write encodes v. Key order comes from the value's own marshaling.
func (j *JSONWriter) Write(v any) error {
	data, err := Encode(v, j.indent)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := j.w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Encode marshals v, indenting nested levels by indent spaces when positive
func Encode(v any, indent int) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	if indent <= 0 {
		return data, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", strings.Repeat(" ", indent)); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	return buf.Bytes(), nil
}
