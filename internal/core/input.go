package core

// input.go decodes datasets and mappings from files and request bodies.
//
// Spreadsheet exports on Windows often start with a UTF-8 byte order mark,
// which encoding/json rejects. Every decoder here strips it first.

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/recon/internal/recon"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader over r without a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// DecodeJSON decodes a single JSON value from r into v. Trailing data after
// the value is rejected.
func DecodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(SkipBOM(r))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty input")
		}
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// DecodeRows reads a dataset encoded as a JSON array of objects, one object
// per row. Cells must be scalars.
func DecodeRows(r io.Reader) ([]recon.Row, error) {
	var rows []recon.Row
	if err := DecodeJSON(r, &rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	for i, row := range rows {
		if row == nil {
			return nil, fmt.Errorf("decode rows: row %d is null", i)
		}
	}
	return rows, nil
}

// DecodeMapping reads a MappingConfig written as YAML or JSON. Unknown
// fields are rejected so a misspelled option is not silently ignored.
func DecodeMapping(r io.Reader) (recon.MappingConfig, error) {
	var m recon.MappingConfig
	dec := yaml.NewDecoder(SkipBOM(r))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return m, errors.New("decode mapping: empty input")
		}
		return m, fmt.Errorf("decode mapping: %w", err)
	}
	return m, nil
}
