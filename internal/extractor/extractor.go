package extractor

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/resume"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

// Matcher decides whether a label occurs in an already lower-cased text.
type Matcher interface {
	Contains(loweredText, label string) bool
}

// SubstringMatcher matches a label anywhere in the text, ignoring case.
// There are no word boundaries: "AI" matches "AIrplane" and "Java" matches
// "JavaScript".
type SubstringMatcher struct{}

func (SubstringMatcher) Contains(loweredText, label string) bool {
	return strings.Contains(loweredText, strings.ToLower(label))
}

// ParsedResume is a resume reduced to the vocabulary labels found in its text.
// Labels keep their canonical casing and vocabulary order.
type ParsedResume struct {
	ResumeID  string   `json:"resume_id"`
	Skills    []string `json:"skills"`
	Education []string `json:"education"`
	Roles     []string `json:"roles"`
}

// Extract returns the labels of v found in text using substring matching.
func Extract(text string, v vocabulary.Vocabulary) []string {
	return extractWith(SubstringMatcher{}, strings.ToLower(text), v)
}

func extractWith(m Matcher, lowered string, v vocabulary.Vocabulary) []string {
	found := make([]string, 0)
	if strings.TrimSpace(lowered) == "" {
		return found
	}

	v.Each(func(label string) {
		if m.Contains(lowered, label) {
			found = append(found, label)
		}
	})

	return found
}

// Extractor turns raw resume records into parsed resumes.
type Extractor struct {
	vocab   vocabulary.Set
	matcher Matcher
	workers int
	logger  *zap.Logger
}

type Option func(*Extractor)

// WithMatcher replaces the default substring matcher.
func WithMatcher(m Matcher) Option {
	return func(e *Extractor) {
		if m != nil {
			e.matcher = m
		}
	}
}

// WithWorkers sets how many records ParseAll handles concurrently.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		e.workers = n
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger.WithFields(l)
	}
}

func New(vocab vocabulary.Set, opts ...Option) *Extractor {
	e := &Extractor{
		vocab:   vocab,
		matcher: SubstringMatcher{},
		workers: 1,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Parse extracts skills, education and roles from a single record.
func (e *Extractor) Parse(rec resume.Record) ParsedResume {
	lowered := strings.ToLower(rec.Text)

	return ParsedResume{
		ResumeID:  rec.ID,
		Skills:    extractWith(e.matcher, lowered, e.vocab.Skills),
		Education: extractWith(e.matcher, lowered, e.vocab.Education),
		Roles:     extractWith(e.matcher, lowered, e.vocab.Roles),
	}
}

// ParseAll parses every record, keeping input order. The only possible error
// is the cancellation of ctx.
func (e *Extractor) ParseAll(ctx context.Context, records []resume.Record) ([]ParsedResume, error) {
	parsed := make([]ParsedResume, len(records))

	if e.vocab.IsEmpty() {
		e.logger.Warn("all vocabularies are empty, nothing will be extracted")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.workers, 1))

	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			parsed[i] = e.Parse(rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("resumes parsed", zap.Int("count", len(parsed)))

	return parsed, nil
}
