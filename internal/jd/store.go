package jd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const customIDFormat = "CUST%03d"

// Store persists custom job descriptions in a flat JSON file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Init creates an empty store file if it does not exist yet.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	return s.write(nil)
}

// Load returns the saved job descriptions. A missing or empty file is an
// empty store.
func (s *Store) Load() ([]JobDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Add appends j to the store. A blank id is replaced by the next CUSTnnn id.
func (s *Store) Add(j JobDescription) (JobDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return j, err
	}

	j = j.Normalize()
	if j.ID == "" {
		j.ID = fmt.Sprintf(customIDFormat, len(saved)+1)
	}
	if err := j.Validate(); err != nil {
		return j, err
	}

	if err := s.write(append(saved, j)); err != nil {
		return j, err
	}

	return j, nil
}

// Find returns the saved job description with the given id.
func (s *Store) Find(id string) (JobDescription, bool, error) {
	saved, err := s.Load()
	if err != nil {
		return JobDescription{}, false, err
	}

	j, ok := Find(id, saved)
	return j, ok, nil
}

func (s *Store) load() ([]JobDescription, error) {
	file, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return nil, nil
	}

	var raws []map[string]any
	if err := json.NewDecoder(file).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decoding jd store %q: %w", s.path, err)
	}

	jds, err := FromMaps(raws)
	if err != nil {
		return nil, fmt.Errorf("jd store %q: %w", s.path, err)
	}

	return jds, nil
}

func (s *Store) write(jds []JobDescription) error {
	if jds == nil {
		jds = []JobDescription{}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jds); err != nil {
		return err
	}
	return nil
}
