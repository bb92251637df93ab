package ingestion

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/yungbote/orgsync-backend/internal/hierarchy"
)

// DecodeXLSX reads the first sheet of a workbook. The first row is the
// header; the rest become hierarchy rows.
func DecodeXLSX(r io.Reader) ([]hierarchy.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &InputError{Code: InputErrorMalformed, Cause: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &InputError{Code: InputErrorMalformed, Cause: fmt.Errorf("workbook has no sheets")}
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &InputError{Code: InputErrorMalformed, Cause: err}
	}
	if len(records) == 0 {
		return nil, &InputError{Code: InputErrorMalformed, Cause: fmt.Errorf("missing header row")}
	}

	idx := headerIndex(records[0])
	if missing := missingColumns(idx); len(missing) > 0 {
		return nil, &InputError{Code: InputErrorMissingColumns, Missing: missing}
	}

	rows := make([]hierarchy.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, rowFromRecord(record, idx))
	}
	return rows, nil
}
