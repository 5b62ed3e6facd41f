package resume

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []Record
	}{
		{
			name:   "canonical column with ids",
			input:  "ID,resume_text\n42,Python developer\n43,\n",
			expect: []Record{{ID: "42", Text: "Python developer"}, {ID: "43", Text: ""}},
		},
		{
			name:   "legacy column without ids",
			input:  "Category,Resume_str\nIT,Java engineer\nHR,\"Payroll, recruitment\"\n",
			expect: []Record{{ID: "0", Text: "Java engineer"}, {ID: "1", Text: "Payroll, recruitment"}},
		},
		{
			name:   "canonical column wins over legacy",
			input:  "Resume_str,resume_text\nold,new\n",
			expect: []Record{{ID: "0", Text: "new"}},
		},
		{
			name:   "blank id falls back to ordinal",
			input:  "ID,resume_text\n,SQL\n",
			expect: []Record{{ID: "0", Text: "SQL"}},
		},
		{
			name:   "short row",
			input:  "ID,Category,resume_text\n7,IT\n",
			expect: []Record{{ID: "7", Text: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ReadCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.expect) {
				t.Fatalf("expected %d records, got %d", len(tt.expect), len(got))
			}
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Fatalf("record %d: expected %+v, got %+v", i, tt.expect[i], got[i])
				}
			}
		})
	}
}

func TestReadCSVShapeErrors(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"empty":          "",
		"no text column": "ID,Category\n1,IT\n",
		"header only":    "ID,resume_text\n",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ReadCSV(strings.NewReader(input))
			if !errors.Is(err, ErrInputShape) {
				t.Fatalf("expected input shape error, got %v", err)
			}
		})
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("resume.txt", []byte("hello"))
	if !errors.Is(err, ErrInputShape) {
		t.Fatalf("expected input shape error, got %v", err)
	}

	var shapeErr *InputShapeError
	if !errors.As(err, &shapeErr) || shapeErr.Source != "resume.txt" {
		t.Fatalf("expected source to be recorded, got %v", err)
	}
}

func TestLoadUnreadableDocument(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cv.pdf", "cv.DOCX"} {
		records, err := Load(name, []byte("garbage"))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if len(records) != 1 || records[0].ID != name || records[0].Text != "" {
			t.Fatalf("%s: expected one empty record, got %+v", name, records)
		}
		if records[0].Err == nil {
			t.Fatalf("%s: expected the decode error to be kept", name)
		}
	}
}

func TestLoadCSVRecordsSource(t *testing.T) {
	_, err := Load("upload.CSV", []byte("name\nfoo\n"))

	var shapeErr *InputShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected input shape error, got %v", err)
	}
	if shapeErr.Source != "upload.CSV" {
		t.Fatalf("expected source upload.CSV, got %q", shapeErr.Source)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumes.csv")
	if err := os.WriteFile(path, []byte("resume_text\nMBA graduate\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	records, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Text != "MBA graduate" {
		t.Fatalf("unexpected records: %+v", records)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParagraphText(t *testing.T) {
	content := `<w:document xmlns:w="w"><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Python, </w:t></w:r><w:r><w:t>SQL</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`</w:body></w:document>`

	got, err := paragraphText(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Jane Doe\nPython, SQL" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTexts(t *testing.T) {
	texts := Texts([]Record{{ID: "1", Text: "a"}, {ID: "2", Text: "b"}})
	if strings.Join(texts, ",") != "a,b" {
		t.Fatalf("unexpected texts: %v", texts)
	}
}
