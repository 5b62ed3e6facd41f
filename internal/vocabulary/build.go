package vocabulary

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	buildEducationKeywords = []string{
		"B.Tech", "M.Tech", "B.Sc", "MBA", "B.Des", "Diploma", "BBA", "PhD", "BE", "MSc", "BCA", "MCA",
	}
	buildRoleKeywords = []string{
		"Software Engineer", "Data Analyst", "HR Manager", "Graphic Designer", "Teacher", "Consultant",
	}
)

// Build derives vocabulary lists from a corpus of resume texts. Every
// whitespace separated token becomes a title-cased skill candidate, while
// roles and education are limited to fixed keyword lists found in the corpus.
// All lists are sorted.
func Build(texts []string) Lists {
	caser := cases.Title(language.Und)

	skills := make(map[string]struct{})
	roles := make(map[string]struct{})
	education := make(map[string]struct{})

	for _, text := range texts {
		for _, word := range strings.Fields(text) {
			skills[caser.String(word)] = struct{}{}
		}

		lowered := strings.ToLower(text)
		for _, r := range buildRoleKeywords {
			if strings.Contains(lowered, strings.ToLower(r)) {
				roles[r] = struct{}{}
			}
		}
		for _, e := range buildEducationKeywords {
			if strings.Contains(lowered, strings.ToLower(e)) {
				education[e] = struct{}{}
			}
		}
	}

	return Lists{
		Skills:    sortedKeys(skills),
		Education: sortedKeys(education),
		Roles:     sortedKeys(roles),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
