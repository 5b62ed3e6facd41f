package jd

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const (
	DefaultMaxPhrases      = 30
	DefaultMaxPhraseLength = 40

	sourceTextLength = 200
)

// SkillExtractor turns a free-text job description into a list of skills.
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, text string) ([]string, error)
}

// RoleExtractor is a SkillExtractor that also finds the roles a job
// description asks for. FromText uses it when available.
type RoleExtractor interface {
	SkillExtractor
	ExtractSkillsAndRoles(ctx context.Context, text string) (skills, roles []string, err error)
}

func extractTerms(ctx context.Context, e SkillExtractor, text string) ([]string, []string, error) {
	if re, ok := e.(RoleExtractor); ok {
		return re.ExtractSkillsAndRoles(ctx, text)
	}
	skills, err := e.ExtractSkills(ctx, text)
	return skills, nil, err
}

// HeuristicExtractor is a low-confidence keyword picker for free-text JDs. It
// takes every vocabulary skill found in the text plus capitalized words and
// two-word capitalized phrases.
type HeuristicExtractor struct {
	Vocabulary vocabulary.Vocabulary
	// MaxPhrases caps how many capitalized candidates are considered.
	// Zero means no cap.
	MaxPhrases int
	// MaxPhraseLength is an exclusive upper bound on candidate length in runes.
	// Zero means no bound.
	MaxPhraseLength int
	// StopWords drop any candidate containing one of them, ignoring case.
	StopWords []string
}

// NewHeuristic returns a heuristic extractor with the default limits.
func NewHeuristic(v vocabulary.Vocabulary) *HeuristicExtractor {
	return &HeuristicExtractor{
		Vocabulary:      v,
		MaxPhrases:      DefaultMaxPhrases,
		MaxPhraseLength: DefaultMaxPhraseLength,
	}
}

func (h *HeuristicExtractor) ExtractSkills(_ context.Context, text string) ([]string, error) {
	found := make(map[string]struct{})

	lowered := strings.ToLower(text)
	h.Vocabulary.Each(func(label string) {
		if strings.Contains(lowered, strings.ToLower(label)) {
			found[label] = struct{}{}
		}
	})

	stop := make(map[string]struct{}, len(h.StopWords))
	for _, w := range h.StopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	candidates := capitalizedCandidates(strings.Fields(text))
	if h.MaxPhrases > 0 && len(candidates) > h.MaxPhrases {
		candidates = candidates[:h.MaxPhrases]
	}

	for _, c := range candidates {
		if h.MaxPhraseLength > 0 && utf8.RuneCountInString(c) >= h.MaxPhraseLength {
			continue
		}
		if containsStopWord(c, stop) {
			continue
		}
		found[c] = struct{}{}
	}

	skills := make([]string, 0, len(found))
	for s := range found {
		skills = append(skills, s)
	}
	sort.Strings(skills)

	return skills, nil
}

func capitalizedCandidates(words []string) []string {
	var caps []string
	for i, w := range words {
		if !startsUpper(w) || utf8.RuneCountInString(w) < 2 {
			continue
		}
		caps = append(caps, w)
		if i+1 < len(words) && startsUpper(words[i+1]) {
			caps = append(caps, w+" "+words[i+1])
		}
	}
	return caps
}

func startsUpper(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func containsStopWord(candidate string, stop map[string]struct{}) bool {
	if len(stop) == 0 {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(candidate)) {
		if _, ok := stop[w]; ok {
			return true
		}
	}
	return false
}

// StaticSkills is an extractor that ignores the text and returns itself. It
// is used when the skills of a JD are given explicitly.
type StaticSkills []string

func (s StaticSkills) ExtractSkills(context.Context, string) ([]string, error) {
	return append([]string(nil), s...), nil
}

type fallbackExtractor struct {
	primary   SkillExtractor
	secondary SkillExtractor
	logger    *zap.Logger
}

// Fallback uses secondary whenever primary fails or finds nothing. Roles come
// from whichever extractor produced the skills.
func Fallback(primary, secondary SkillExtractor, l *zap.Logger) RoleExtractor {
	return &fallbackExtractor{primary: primary, secondary: secondary, logger: logger.WithFields(l)}
}

func (f *fallbackExtractor) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	skills, _, err := f.ExtractSkillsAndRoles(ctx, text)
	return skills, err
}

func (f *fallbackExtractor) ExtractSkillsAndRoles(ctx context.Context, text string) ([]string, []string, error) {
	skills, roles, err := extractTerms(ctx, f.primary, text)
	if err == nil && len(skills) > 0 {
		return skills, roles, nil
	}

	if err != nil {
		f.logger.Warn("skill extraction failed, falling back", zap.Error(err))
	} else {
		f.logger.Info("skill extraction found nothing, falling back")
	}

	return extractTerms(ctx, f.secondary, text)
}

// FromText builds a job description from free text. Roles stay empty unless
// the extractor is a RoleExtractor.
func FromText(ctx context.Context, extractor SkillExtractor, id, title, text string) (JobDescription, error) {
	skills, roles, err := extractTerms(ctx, extractor, text)
	if err != nil {
		return JobDescription{}, err
	}

	j := JobDescription{
		ID:         id,
		Title:      title,
		Skills:     skills,
		Roles:      roles,
		SourceText: TruncateRunes(text, sourceTextLength),
	}

	return j.Normalize(), nil
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
