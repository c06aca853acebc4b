// Package sequence issues local document numbers: receipt numbers of the
// form <PREFIX>-RCT-NNN and credit note numbers of the form CN-YYYY-NNN.
// Counters are kept in local JSON state files so numbers survive restarts;
// the backend remains the authority on uniqueness and may reject a
// collision.
package sequence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// PrefixFunc resolves a company ID to its receipt number prefix.
type PrefixFunc func(companyID string) (string, error)

// FileSequence is a file-backed receipt number sequence with one counter per
// company.
type FileSequence struct {
	path   string
	prefix PrefixFunc

	mu sync.Mutex
}

// NewFileSequence creates a FileSequence persisting counters at path.
func NewFileSequence(path string, prefix PrefixFunc) *FileSequence {
	return &FileSequence{path: path, prefix: prefix}
}

// Next issues the next receipt number for the company and persists the
// advanced counter before returning.
func (s *FileSequence) Next(companyID string) (string, error) {
	const op = "Next"

	s.mu.Lock()
	defer s.mu.Unlock()

	prefix, err := s.prefix(companyID)
	if err != nil {
		return "", fmt.Errorf("%s: failed to resolve prefix for company %s: %w", op, companyID, err)
	}

	counters, err := loadCounters(s.path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	counters[companyID]++
	if err := saveCounters(s.path, counters); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Sprintf("%s-RCT-%03d", prefix, counters[companyID]), nil
}

// YearSequence is a file-backed credit note number sequence with one counter
// per calendar year.
type YearSequence struct {
	path string

	mu sync.Mutex
}

// NewYearSequence creates a YearSequence persisting counters at path.
func NewYearSequence(path string) *YearSequence {
	return &YearSequence{path: path}
}

// Next issues the next credit note number for the given year and persists
// the advanced counter before returning.
func (s *YearSequence) Next(year int) (string, error) {
	const op = "Next"

	s.mu.Lock()
	defer s.mu.Unlock()

	counters, err := loadCounters(s.path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	key := strconv.Itoa(year)
	counters[key]++
	if err := saveCounters(s.path, counters); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return fmt.Sprintf("CN-%d-%03d", year, counters[key]), nil
}

func loadCounters(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return make(map[string]int), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sequence state: %w", err)
	}
	var counters map[string]int
	if err := json.Unmarshal(data, &counters); err != nil {
		return nil, fmt.Errorf("failed to parse sequence state: %w", err)
	}
	if counters == nil {
		counters = make(map[string]int)
	}
	return counters, nil
}

func saveCounters(path string, counters map[string]int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create sequence state directory: %w", err)
	}
	data, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sequence state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write sequence state: %w", err)
	}
	return nil
}
