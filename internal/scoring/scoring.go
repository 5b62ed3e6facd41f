package scoring

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ranker/internal/extractor"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
)

// Category weights of the total score. They sum to 1.
const (
	SkillsWeight    = 0.5
	RolesWeight     = 0.3
	EducationWeight = 0.2
)

// scoreDecimals is the number of decimals the total score is rounded to.
const scoreDecimals = 2

// Weights holds the coefficient of each category in the total score.
type Weights struct {
	Skills    float64
	Roles     float64
	Education float64
}

// DefaultWeights are the weights every result table has been produced with.
var DefaultWeights = Weights{
	Skills:    SkillsWeight,
	Roles:     RolesWeight,
	Education: EducationWeight,
}

// MatchResult is the score of one resume against one job description.
// Matched lists are lower-cased and sorted.
type MatchResult struct {
	ResumeID         string   `json:"resume_id"`
	JDID             string   `json:"jd_id"`
	JDTitle          string   `json:"jd_title"`
	Score            float64  `json:"score"`
	SkillsMatched    []string `json:"skills_matched"`
	RolesMatched     []string `json:"roles_matched"`
	EducationMatched []string `json:"education_matched"`
}

// Scorer computes weighted match scores.
type Scorer struct {
	weights Weights
	workers int
	logger  *zap.Logger
}

type Option func(*Scorer)

// WithWeights overrides DefaultWeights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithWorkers sets how many resumes ScoreAll handles concurrently.
func WithWorkers(n int) Option {
	return func(s *Scorer) {
		s.workers = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger.WithFields(l)
	}
}

func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights,
		workers: 1,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score compares a parsed resume with a job description. Every category
// scores the share of the JD's items found in the resume; a JD category
// without items scores zero.
func (s *Scorer) Score(r extractor.ParsedResume, j jd.JobDescription) MatchResult {
	skillScore, skills := categoryScore(r.Skills, j.Skills)
	roleScore, roles := categoryScore(r.Roles, j.Roles)
	eduScore, education := categoryScore(r.Education, j.Education)

	total := s.weights.Skills*skillScore + s.weights.Roles*roleScore + s.weights.Education*eduScore

	return MatchResult{
		ResumeID:         r.ResumeID,
		JDID:             j.ID,
		JDTitle:          j.Title,
		Score:            round(clamp(total)),
		SkillsMatched:    skills,
		RolesMatched:     roles,
		EducationMatched: education,
	}
}

// ScoreAll scores every resume against every job description. The result has
// exactly len(parsed)*len(jds) rows ordered by resume, then by JD. The only
// possible error is the cancellation of ctx.
func (s *Scorer) ScoreAll(ctx context.Context, parsed []extractor.ParsedResume, jds []jd.JobDescription) ([]MatchResult, error) {
	results := make([]MatchResult, len(parsed)*len(jds))
	if len(results) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))

	for i, r := range parsed {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for k, j := range jds {
				results[i*len(jds)+k] = s.Score(r, j)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Debug("resumes scored",
		zap.Int("resumes", len(parsed)),
		zap.Int("jds", len(jds)),
		zap.Int("rows", len(results)),
	)

	return results, nil
}

func categoryScore(resumeItems, jdItems []string) (float64, []string) {
	want := fold(jdItems)
	if len(want) == 0 {
		return 0, []string{}
	}

	have := fold(resumeItems)
	matches := make([]string, 0)
	for item := range want {
		if _, ok := have[item]; ok {
			matches = append(matches, item)
		}
	}
	sort.Strings(matches)

	return float64(len(matches)) / float64(len(want)), matches
}

// fold lower-cases and trims every item into a set, dropping empty ones.
func fold(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// round rounds the exact binary value to the nearest decimal with
// scoreDecimals digits, ties to even. Scaling by 100 first would turn values
// just above a tie, like 0.125+0.2, into exact ties.
func round(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', scoreDecimals, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

// Join renders a matched list for external consumption.
func Join(items []string) string {
	return strings.Join(items, ", ")
}
