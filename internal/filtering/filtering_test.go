package filtering

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/scoring"
)

func results() []scoring.MatchResult {
	return []scoring.MatchResult{
		{ResumeID: "0", JDID: "JD1", Score: 0.25},
		{ResumeID: "0", JDID: "JD2", Score: 0.5},
		{ResumeID: "1", JDID: "JD1", Score: 0.8},
		{ResumeID: "1", JDID: "JD2", Score: 0},
		{ResumeID: "2", JDID: "JD1", Score: 0.25},
		{ResumeID: "2", JDID: "JD2", Score: 0.5},
	}
}

func ids(rs []scoring.MatchResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.JDID+"/"+r.ResumeID)
	}
	return out
}

func TestTopPerJD(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		limit  int
		expect []string
	}{
		{
			name:   "no limit sorts every group",
			limit:  0,
			expect: []string{"JD1/1", "JD1/0", "JD1/2", "JD2/0", "JD2/2", "JD2/1"},
		},
		{
			name:   "ties keep input order",
			limit:  2,
			expect: []string{"JD1/1", "JD1/0", "JD2/0", "JD2/2"},
		},
		{
			name:   "single best",
			limit:  1,
			expect: []string{"JD1/1", "JD2/0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := results()
			got, err := Run(context.Background(), &Config{TopPerJD: tt.limit}, Deps{}, []Filter{NewTopPerJD()}, input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ids(got), tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, ids(got))
			}
			if !reflect.DeepEqual(input, results()) {
				t.Fatalf("input must not be modified")
			}
		})
	}
}

func TestMinScore(t *testing.T) {
	got, err := Run(context.Background(), &Config{MinScore: 0.5}, Deps{}, []Filter{NewMinScore()}, results())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"JD2/0", "JD1/1", "JD2/2"}) {
		t.Fatalf("unexpected results: %v", ids(got))
	}

	if _, err := Run(context.Background(), &Config{MinScore: 2}, Deps{}, []Filter{NewMinScore()}, results()); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.yaml")
	if err := os.WriteFile(path, []byte("- \"1\"\n- 2\n- \"\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Run(context.Background(), &Config{ExcludeFile: path}, Deps{}, []Filter{NewExcludeFile()}, results())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids(got), []string{"JD1/0", "JD2/0"}) {
		t.Fatalf("unexpected results: %v", ids(got))
	}

	_, err = Run(context.Background(), &Config{ExcludeFile: filepath.Join(t.TempDir(), "missing.yaml")}, Deps{}, []Filter{NewExcludeFile()}, results())
	if err == nil {
		t.Fatalf("expected error for missing exclude file")
	}
}

func TestRunChainLogsSteps(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	deps := Deps{Logger: zap.New(core)}

	steps := Default()
	DisableByName(steps, "min_score", "not needed")

	got, err := Run(context.Background(), &Config{MinScore: 0.9, TopPerJD: 1}, deps, steps, results())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected min score to be skipped, got %v", ids(got))
	}

	if observed.FilterMessage("filter disabled").Len() != 1 {
		t.Fatalf("expected disabled filter to be logged")
	}
	if observed.FilterMessage("filter step").Len() != 2 {
		t.Fatalf("expected two applied steps, got %d", observed.FilterMessage("filter step").Len())
	}

	statuses := Describe(steps)
	if len(statuses) != 3 || statuses[1].Enabled || statuses[1].Reason != "not needed" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
	if statuses[2].Details["limit"] != "1" {
		t.Fatalf("expected limit detail, got %+v", statuses[2])
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, nil, Deps{}, Default(), results()); err == nil {
		t.Fatalf("expected cancellation error")
	}
}
