package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spigell/resume-ranker/internal/extractor"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/scoring"
)

var (
	scoreHeader  = []string{"resume_id", "jd_id", "jd_title", "score", "skills_matched", "roles_matched", "education_matched"}
	parsedHeader = []string{"resume_id", "skills", "education", "roles"}
)

// Row is the flat view of a match result used by tables and JSON responses.
type Row struct {
	ResumeID         string  `json:"resume_id"`
	JDID             string  `json:"jd_id"`
	JDTitle          string  `json:"jd_title"`
	Score            float64 `json:"score"`
	SkillsMatched    string  `json:"skills_matched"`
	RolesMatched     string  `json:"roles_matched"`
	EducationMatched string  `json:"education_matched"`
}

// Summary holds the best rows of one job description.
type Summary struct {
	JDID       string `json:"jd_id"`
	JDTitle    string `json:"jd_title"`
	TopMatches []Row  `json:"top_matches"`
}

func NewRow(r scoring.MatchResult) Row {
	return Row{
		ResumeID:         r.ResumeID,
		JDID:             r.JDID,
		JDTitle:          r.JDTitle,
		Score:            r.Score,
		SkillsMatched:    scoring.Join(r.SkillsMatched),
		RolesMatched:     scoring.Join(r.RolesMatched),
		EducationMatched: scoring.Join(r.EducationMatched),
	}
}

func Rows(results []scoring.MatchResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, NewRow(r))
	}
	return rows
}

// GroupByJD groups results by job description in the order of jds. Results
// keep their relative order inside a group. Every JD gets a summary even
// without rows.
func GroupByJD(results []scoring.MatchResult, jds []jd.JobDescription) []Summary {
	byJD := make(map[string][]Row, len(jds))
	for _, r := range results {
		byJD[r.JDID] = append(byJD[r.JDID], NewRow(r))
	}

	summaries := make([]Summary, 0, len(jds))
	for _, j := range jds {
		rows := byJD[j.ID]
		if rows == nil {
			rows = []Row{}
		}
		summaries = append(summaries, Summary{JDID: j.ID, JDTitle: j.Title, TopMatches: rows})
	}
	return summaries
}

// FormatScore renders a score with the fewest digits that represent it.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// WriteCSV writes the score table with a header row.
func WriteCSV(w io.Writer, results []scoring.MatchResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoreHeader); err != nil {
		return err
	}

	for _, r := range Rows(results) {
		record := []string{
			r.ResumeID,
			r.JDID,
			r.JDTitle,
			FormatScore(r.Score),
			r.SkillsMatched,
			r.RolesMatched,
			r.EducationMatched,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteParsedCSV writes parsed resumes with comma joined label lists.
func WriteParsedCSV(w io.Writer, parsed []extractor.ParsedResume) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(parsedHeader); err != nil {
		return err
	}

	for _, p := range parsed {
		record := []string{p.ResumeID, scoring.Join(p.Skills), scoring.Join(p.Education), scoring.Join(p.Roles)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the score table to path, creating parent directories.
func WriteFile(path string, results []scoring.MatchResult) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteCSV(w, results)
	})
}

// WriteParsedFile writes parsed resumes to path, creating parent directories.
func WriteParsedFile(path string, parsed []extractor.ParsedResume) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteParsedCSV(w, parsed)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := write(file); err != nil {
		return fmt.Errorf("writing %q: %w", path, err)
	}
	return nil
}
