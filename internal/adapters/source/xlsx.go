package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/stemmap/internal/domain/model"
	"github.com/okian/stemmap/internal/domain/normalize"
)

// DecodeXLSX reads the first worksheet of a workbook. The first row is a
// header; blank rows are skipped.
func DecodeXLSX(payload []byte) ([]model.Event, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformedPayload, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx: workbook has no sheets", ErrMalformedPayload)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrMalformedPayload, err)
	}

	events := make([]model.Event, 0, len(rows))
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		events = append(events, normalize.Strings(row))
	}
	return events, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
