package headhunter

import (
	"html"
	"regexp"
	"strings"

	"github.com/spigell/resume-ranker/internal/jd"
)

const (
	jdIDPrefix       = "HH"
	sourceTextLength = 200
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

type Vacancies struct {
	Items []*Vacancy
}

type Entity struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Vacancy struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name,omitempty"`
	Area              Entity   `json:"area,omitempty"`
	Employer          Entity   `json:"employer,omitempty"`
	Experience        Entity   `json:"experience,omitempty"`
	AlternateURL      string   `json:"alternate_url,omitempty"`
	Description       string   `json:"description,omitempty"`
	KeySkills         []Entity `json:"key_skills,omitempty"`
	ProfessionalRoles []Entity `json:"professional_roles,omitempty"`
	Snipet            struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	Archived    bool   `json:"archived,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, vacancy := range v.Items {
		ids = append(ids, vacancy.ID)
	}
	return ids
}

// PlainText returns the description without markup. Search results have no
// description, so the snippet is used instead.
func (va *Vacancy) PlainText() string {
	text := va.Description
	if strings.TrimSpace(text) == "" {
		text = va.Snipet.Requirement + " " + va.Snipet.Responsibility
	}

	text = tagPattern.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// ToJobDescription maps key skills to skills and professional roles to roles.
func (va *Vacancy) ToJobDescription() jd.JobDescription {
	j := jd.JobDescription{
		ID:         jdIDPrefix + va.ID,
		Title:      va.Name,
		Skills:     names(va.KeySkills),
		Roles:      names(va.ProfessionalRoles),
		SourceText: jd.TruncateRunes(va.PlainText(), sourceTextLength),
	}
	return j.Normalize()
}

func names(entities []Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}
