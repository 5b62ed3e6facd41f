package jd

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrInvalid is returned for job descriptions missing required fields.
var ErrInvalid = errors.New("invalid job description")

// JobDescription is a scoring target. Only ID is required; the attribute lists
// default to empty, and an empty list contributes nothing to the score.
type JobDescription struct {
	ID         string   `mapstructure:"jd_id" json:"jd_id"`
	Title      string   `mapstructure:"title" json:"title"`
	Skills     []string `mapstructure:"skills" json:"skills"`
	Roles      []string `mapstructure:"roles" json:"roles"`
	Education  []string `mapstructure:"education" json:"education,omitempty"`
	SourceText string   `mapstructure:"source_text" json:"source_text,omitempty"`
}

// Validate checks the shape of the job description.
func (j JobDescription) Validate() error {
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("%w: jd_id is required (title %q)", ErrInvalid, j.Title)
	}
	return nil
}

// Normalize trims every value and drops empty list entries.
func (j JobDescription) Normalize() JobDescription {
	j.ID = strings.TrimSpace(j.ID)
	j.Title = strings.TrimSpace(j.Title)
	j.Skills = cleanList(j.Skills)
	j.Roles = cleanList(j.Roles)
	j.Education = cleanList(j.Education)
	return j
}

// FromMap decodes a loosely typed JD, as found in JSON stores and config files.
// List fields accept either a list or a comma separated string; missing lists
// default to empty. The result is validated.
func FromMap(raw map[string]any) (JobDescription, error) {
	var j JobDescription

	if raw == nil {
		return j, fmt.Errorf("%w: empty object", ErrInvalid)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToListHook,
		),
		WeaklyTypedInput: true,
		Result:           &j,
	})
	if err != nil {
		return j, err
	}

	if err := decoder.Decode(raw); err != nil {
		return j, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	j = j.Normalize()
	return j, j.Validate()
}

// FromMaps decodes every map, failing on the first invalid one.
func FromMaps(raws []map[string]any) ([]JobDescription, error) {
	jds := make([]JobDescription, 0, len(raws))
	for i, raw := range raws {
		j, err := FromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("job description #%d: %w", i, err)
		}
		jds = append(jds, j)
	}
	return jds, nil
}

func stringToListHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
		return data, nil
	}
	return SplitList(reflect.ValueOf(data).String()), nil
}

// SplitList splits a comma separated value into trimmed, non-empty items.
func SplitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Find returns the first job description with the given id, searching the
// lists in order.
func Find(id string, lists ...[]JobDescription) (JobDescription, bool) {
	for _, list := range lists {
		for _, j := range list {
			if j.ID == id {
				return j, true
			}
		}
	}
	return JobDescription{}, false
}

// IDs returns the ids of the job descriptions in order.
func IDs(jds []JobDescription) []string {
	ids := make([]string, 0, len(jds))
	for _, j := range jds {
		ids = append(ids, j.ID)
	}
	return ids
}
