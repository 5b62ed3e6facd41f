package filtering

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-ranker/internal/scoring"
)

type minScoreFilter struct {
	disabled bool
	reason   string
	min      float64
}

// NewMinScore creates a filter that drops results scoring below the configured minimum.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg != nil {
		f.min = cfg.MinScore
	}
	if f.min < 0 || f.min > 1 {
		return fmt.Errorf("minimum score must be within [0, 1], got %v", f.min)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, results []scoring.MatchResult) ([]scoring.MatchResult, Step, error) {
	initial := len(results)
	if f.min == 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept := make([]scoring.MatchResult, 0, initial)
	for _, r := range results {
		if r.Score >= f.min {
			kept = append(kept, r)
		}
	}

	if deps.Logger != nil && len(kept) != initial {
		deps.Logger.Debug("dropping results below minimum score",
			zap.Float64("min_score", f.min),
			zap.Int("results_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": strconv.FormatFloat(f.min, 'f', 2, 64)},
	}
}

type topPerJDFilter struct {
	disabled bool
	reason   string
	limit    int
}

// NewTopPerJD creates a filter that keeps the best results of every job
// description. Groups follow the order in which their JD first appears, and
// results inside a group are ordered by score, highest first. Ties keep input
// order.
func NewTopPerJD() Filter {
	return &topPerJDFilter{}
}

func (f *topPerJDFilter) Name() string { return "top_per_jd" }

func (f *topPerJDFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *topPerJDFilter) IsEnabled() bool { return !f.disabled }

func (f *topPerJDFilter) Validate(cfg *Config) error {
	f.limit = 0
	if cfg != nil {
		f.limit = cfg.TopPerJD
	}
	if f.limit < 0 {
		return fmt.Errorf("top per jd must not be negative, got %d", f.limit)
	}
	return nil
}

func (f *topPerJDFilter) Apply(_ context.Context, _ Deps, results []scoring.MatchResult) ([]scoring.MatchResult, Step, error) {
	initial := len(results)

	order := make([]string, 0)
	groups := make(map[string][]scoring.MatchResult)
	for _, r := range results {
		if _, ok := groups[r.JDID]; !ok {
			order = append(order, r.JDID)
		}
		groups[r.JDID] = append(groups[r.JDID], r)
	}

	kept := make([]scoring.MatchResult, 0, initial)
	for _, id := range order {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Score > group[j].Score
		})
		if f.limit > 0 && len(group) > f.limit {
			group = group[:f.limit]
		}
		kept = append(kept, group...)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *topPerJDFilter) Status() Status {
	details := map[string]string{}
	if f.limit > 0 {
		details["limit"] = strconv.Itoa(f.limit)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes resumes listed in an exclude
// file. The file is a YAML list of resume ids.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, results []scoring.MatchResult) ([]scoring.MatchResult, Step, error) {
	initial := len(results)
	if f.path == "" {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	ids, err := ReadExcludeFile(f.path)
	if err != nil {
		return results, Step{}, fmt.Errorf("getting excluded resumes from file: %w", err)
	}

	excluded := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		excluded[id] = struct{}{}
	}

	kept := make([]scoring.MatchResult, 0, initial)
	for _, r := range results {
		if _, ok := excluded[r.ResumeID]; !ok {
			kept = append(kept, r)
		}
	}

	if deps.Logger != nil && len(kept) != initial {
		deps.Logger.Info("excluding resumes based on exclude file",
			zap.String("path", f.path),
			zap.Int("results_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

// ReadExcludeFile returns the resume ids listed in path. An empty file
// excludes nothing.
func ReadExcludeFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := yaml.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}

	cleaned := ids[:0]
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return cleaned, nil
}
