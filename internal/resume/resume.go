package resume

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// TextColumn is the canonical column holding resume text.
	TextColumn = "resume_text"
	// LegacyTextColumn is accepted when TextColumn is absent.
	LegacyTextColumn = "Resume_str"
	// IDColumn holds the resume identifier. Rows without it are identified
	// by their ordinal.
	IDColumn = "ID"
)

// ErrInputShape is matched by every InputShapeError.
var ErrInputShape = errors.New("input has no usable resume text")

// Record is a single resume as plain text.
type Record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	// Err is set when a document could not be decoded. The record then has
	// empty text and still takes part in scoring.
	Err error `json:"-"`
}

// InputShapeError reports a source that cannot yield any resume text.
type InputShapeError struct {
	Source string
	Reason string
}

func (e *InputShapeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %s", ErrInputShape, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", ErrInputShape, e.Source, e.Reason)
}

func (e *InputShapeError) Is(target error) bool {
	return target == ErrInputShape
}

// Load converts an uploaded or local file into records based on its extension.
// CSV files yield one record per row, PDF and DOCX files a single record
// identified by the file name. A document that cannot be decoded yields an
// empty record with Err set.
func Load(name string, data []byte) ([]Record, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	switch ext {
	case "csv":
		records, err := ReadCSV(bytes.NewReader(data))
		if err != nil {
			var shapeErr *InputShapeError
			if errors.As(err, &shapeErr) && shapeErr.Source == "" {
				shapeErr.Source = name
			}
			return nil, err
		}
		return records, nil
	case "pdf":
		text, err := ExtractPDF(data)
		return []Record{{ID: filepath.Base(name), Text: text, Err: err}}, nil
	case "docx":
		text, err := ExtractDOCX(data)
		return []Record{{ID: filepath.Base(name), Text: text, Err: err}}, nil
	default:
		return nil, &InputShapeError{Source: name, Reason: fmt.Sprintf("unsupported file type %q", ext)}
	}
}

// LoadFile reads path from disk and passes it to Load.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resumes from %q: %w", path, err)
	}

	return Load(path, data)
}

// Texts returns the text of every record.
func Texts(records []Record) []string {
	texts := make([]string, 0, len(records))
	for _, r := range records {
		texts = append(texts, r.Text)
	}
	return texts
}
