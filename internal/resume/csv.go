package resume

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV reads resume rows from a CSV table with a header row. The text comes
// from the resume_text column or, when it is missing, from Resume_str. Rows
// without an ID column are identified by their zero-based ordinal.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &InputShapeError{Reason: "table is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	textIdx, idIdx := -1, -1
	legacyIdx := -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case TextColumn:
			textIdx = i
		case LegacyTextColumn:
			legacyIdx = i
		case IDColumn:
			idIdx = i
		}
	}

	if textIdx < 0 {
		textIdx = legacyIdx
	}
	if textIdx < 0 {
		return nil, &InputShapeError{Reason: fmt.Sprintf("need %s or %s column", LegacyTextColumn, TextColumn)}
	}

	var records []Record
	for row := 0; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", row, err)
		}

		rec := Record{ID: strconv.Itoa(row)}
		if textIdx < len(fields) {
			rec.Text = fields[textIdx]
		}
		if idIdx >= 0 && idIdx < len(fields) && strings.TrimSpace(fields[idIdx]) != "" {
			rec.ID = strings.TrimSpace(fields[idIdx])
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &InputShapeError{Reason: "table has no rows"}
	}

	return records, nil
}
