// Package ingestion decodes tabular hierarchy input (CSV or XLSX) into the
// per-level rows the graph builder consumes. Header matching is
// case-insensitive and tolerant of a leading byte-order mark; every one of
// the ten per-level code/name columns must be present even though individual
// cells may be blank.
package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
)

type InputErrorCode string

const (
	InputErrorOpenFailed      InputErrorCode = "open_failed"
	InputErrorUnsupportedType InputErrorCode = "unsupported_type"
	InputErrorMalformed       InputErrorCode = "malformed"
	InputErrorMissingColumns  InputErrorCode = "missing_columns"
)

// InputError reports a problem with the input itself, before any remote
// call. It is never retried.
type InputError struct {
	Code    InputErrorCode
	Path    string
	Missing []string
	Cause   error
}

func (e *InputError) Error() string {
	if e == nil {
		return "invalid input"
	}
	switch e.Code {
	case InputErrorOpenFailed:
		return fmt.Sprintf("input file %q cannot be opened: %v", e.Path, e.Cause)
	case InputErrorUnsupportedType:
		return fmt.Sprintf("unsupported input type %q; expected .csv or .xlsx", e.Path)
	case InputErrorMissingColumns:
		return fmt.Sprintf("input missing required columns: %s", strings.Join(e.Missing, ", "))
	case InputErrorMalformed:
		return fmt.Sprintf("malformed input: %v", e.Cause)
	default:
		return "invalid input"
	}
}

func (e *InputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// RequiredColumns lists the ten headers every input must carry, derived from
// the level names: <level>_code for the code and the bare level name for the
// display name, root to leaf.
func RequiredColumns() []string {
	out := make([]string, 0, 2*hierarchy.NumLevels)
	for _, level := range hierarchy.Levels() {
		codeCol, nameCol := columnsForLevel(level)
		out = append(out, codeCol, nameCol)
	}
	return out
}

func columnsForLevel(level hierarchy.Level) (string, string) {
	return string(level) + "_code", string(level)
}

// ReadRows loads rows from path, choosing the decoder by file extension.
func ReadRows(path string) ([]hierarchy.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Code: InputErrorOpenFailed, Path: path, Cause: err}
	}
	defer func() { _ = f.Close() }()
	return Decode(path, f)
}

// Decode reads rows from r, choosing the decoder by name's extension. Used
// both for on-disk files and uploaded streams.
func Decode(name string, r io.Reader) ([]hierarchy.Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return DecodeCSV(r)
	case ".xlsx", ".xlsm":
		return DecodeXLSX(r)
	default:
		return nil, &InputError{Code: InputErrorUnsupportedType, Path: name}
	}
}

// headerIndex maps lowercased, trimmed header names to their column
// position. The first occurrence of a duplicated header wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

func missingColumns(idx map[string]int) []string {
	var missing []string
	for _, col := range RequiredColumns() {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// rowFromRecord picks each level's code and name cell out of one record.
// Cells beyond the record's length read as blank, so ragged rows are fine.
func rowFromRecord(record []string, idx map[string]int) hierarchy.Row {
	var row hierarchy.Row
	for i, level := range hierarchy.Levels() {
		codeCol, nameCol := columnsForLevel(level)
		row[i] = hierarchy.Cell{
			Code: fieldAt(record, idx, codeCol),
			Name: fieldAt(record, idx, nameCol),
		}
	}
	return row
}

func fieldAt(record []string, idx map[string]int, column string) string {
	pos, ok := idx[column]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
