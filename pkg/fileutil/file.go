package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"
)

// ListBySuffix returns the files directly under dir whose names carry the
// given suffix, as absolute paths in lexical order. A missing directory is
// an error; an empty result is not.
func ListBySuffix(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, xerrors.Errorf("unable to read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, xerrors.Errorf("abs path error: %w", err)
		}
		files = append(files, abs)
	}
	return files, nil
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(filePath string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return xerrors.Errorf("unable to open %s: %w", filePath, err)
	}
	defer f.Close()

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err = f.Write(b); err != nil {
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	return nil
}

// RemoveDir deletes dir recursively. Removing an absent directory is not
// an error; the caller only learns whether anything existed.
func RemoveDir(dir string) (bool, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, xerrors.Errorf("stat error: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return true, xerrors.Errorf("unable to remove %s: %w", dir, err)
	}
	return true, nil
}
