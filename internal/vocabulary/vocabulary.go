package vocabulary

import (
	"strings"
)

// Vocabulary is an ordered set of canonical labels for one attribute category.
// The zero value is an empty vocabulary. Once built it is never mutated.
type Vocabulary struct {
	labels []string
}

// Set groups the three vocabularies the extractor works with.
type Set struct {
	Skills    Vocabulary
	Education Vocabulary
	Roles     Vocabulary
}

// New builds a vocabulary from the given labels. Labels are trimmed, empty ones
// are dropped and case-insensitive duplicates keep their first occurrence.
func New(labels ...string) Vocabulary {
	seen := make(map[string]struct{}, len(labels))
	result := make([]string, 0, len(labels))

	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		result = append(result, label)
	}

	return Vocabulary{labels: result}
}

// Labels returns a copy of the canonical labels in vocabulary order.
func (v Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

func (v Vocabulary) Len() int {
	return len(v.labels)
}

// Each calls fn for every label in order.
func (v Vocabulary) Each(fn func(label string)) {
	for _, label := range v.labels {
		fn(label)
	}
}

// Contains reports whether label is part of the vocabulary, ignoring case.
func (v Vocabulary) Contains(label string) bool {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, l := range v.labels {
		if strings.ToLower(l) == label {
			return true
		}
	}
	return false
}

// IsEmpty reports whether all three vocabularies are empty. Extraction still
// works in that case, it just never finds anything.
func (s Set) IsEmpty() bool {
	return s.Skills.Len() == 0 && s.Education.Len() == 0 && s.Roles.Len() == 0
}

// Lists is the plain representation of a Set used in config and YAML files.
type Lists struct {
	Skills    []string `mapstructure:"skills" yaml:"skills"`
	Education []string `mapstructure:"education" yaml:"education"`
	Roles     []string `mapstructure:"roles" yaml:"roles"`
}

// Set converts the lists into vocabularies.
func (l Lists) Set() Set {
	return Set{
		Skills:    New(l.Skills...),
		Education: New(l.Education...),
		Roles:     New(l.Roles...),
	}
}

// Lists converts the set back into plain lists.
func (s Set) Lists() Lists {
	return Lists{
		Skills:    s.Skills.Labels(),
		Education: s.Education.Labels(),
		Roles:     s.Roles.Labels(),
	}
}
