package ingestion

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
)

// DecodeCSV reads semicolon-delimited rows. A UTF-8 byte-order mark before
// the header is discarded.
func DecodeCSV(r io.Reader) ([]hierarchy.Row, error) {
	br := bufio.NewReader(r)
	stripUTF8BOM(br)

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &InputError{Code: InputErrorMalformed, Cause: fmt.Errorf("missing header row")}
	}
	if err != nil {
		return nil, &InputError{Code: InputErrorMalformed, Cause: err}
	}

	idx := headerIndex(header)
	if missing := missingColumns(idx); len(missing) > 0 {
		return nil, &InputError{Code: InputErrorMissingColumns, Missing: missing}
	}

	var rows []hierarchy.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &InputError{Code: InputErrorMalformed, Cause: err}
		}
		rows = append(rows, rowFromRecord(record, idx))
	}
	return rows, nil
}

func stripUTF8BOM(r *bufio.Reader) {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
}
