package jd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const fallbackIDLength = 6

// ReadCSV reads job descriptions from a table with the columns
// jd_id,title,skills,roles[,education]. List cells are comma separated. When
// jd_id is blank the id column is used, then the first characters of the title.
// Rows that still have no id are rejected.
func ReadCSV(r io.Reader) ([]JobDescription, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading jd csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	var jds []JobDescription
	for row := 0; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading jd csv row %d: %w", row, err)
		}

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[idx])
		}

		j := JobDescription{
			ID:        cell("jd_id"),
			Title:     cell("title"),
			Skills:    SplitList(cell("skills")),
			Roles:     SplitList(cell("roles")),
			Education: SplitList(cell("education")),
		}
		if j.ID == "" {
			j.ID = cell("id")
		}
		if j.ID == "" {
			j.ID = TruncateRunes(j.Title, fallbackIDLength)
		}

		if err := j.Validate(); err != nil {
			return nil, fmt.Errorf("jd csv row %d: %w", row, err)
		}

		jds = append(jds, j)
	}

	return jds, nil
}
