package core

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoData is returned when none of the candidate source paths exists.
var ErrNoData = errors.New("no data source found")

// FirstExisting returns the first path that exists and is a regular file.
func FirstExisting(paths []string) (string, error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", ErrNoData
}

// LoadFirst loads the first candidate that exists and parses. A candidate
// that exists but fails to parse is skipped; its error is reported only
// when no later candidate loads.
func LoadFirst(paths []string) (*Table, string, error) {
	var lastErr error

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		t, err := loadFile(p)
		if err != nil {
			lastErr = fmt.Errorf("load %s: %w", p, err)
			continue
		}
		return t, p, nil
	}

	if lastErr != nil {
		return nil, "", errors.Join(ErrNoData, lastErr)
	}
	return nil, "", ErrNoData
}

func loadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadCSV(f)
}
