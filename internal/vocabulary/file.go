package vocabulary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads vocabulary lists from a YAML file with skills, education and
// roles keys.
func LoadFile(path string) (Lists, error) {
	var lists Lists

	data, err := os.ReadFile(path)
	if err != nil {
		return lists, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &lists); err != nil {
		return lists, fmt.Errorf("parsing vocabulary file %q: %w", path, err)
	}

	return lists, nil
}

// WriteFile stores the lists as YAML, replacing any existing file.
func WriteFile(path string, lists Lists) error {
	data, err := yaml.Marshal(lists)
	if err != nil {
		return fmt.Errorf("encoding vocabulary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing vocabulary file %q: %w", path, err)
	}

	return nil
}
