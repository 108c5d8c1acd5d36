package jar

import (
	"archive/zip"
	"io"
	"strings"

	"golang.org/x/xerrors"

	"github.com/jarscope/jarscope/pkg/types"
)

// ArchiveReadError reports a jar that could not be opened or read. It is
// recoverable: callers skip the artifact and continue.
type ArchiveReadError struct {
	Path string
	Err  error
}

func (e *ArchiveReadError) Error() string {
	return "unable to read archive " + e.Path + ": " + e.Err.Error()
}

func (e *ArchiveReadError) Unwrap() error {
	return e.Err
}

// Index enumerates the compiled-code entries of one jar in archive order.
// Individual non-class entries are skipped, never reported.
func Index(jarPath string) ([]types.ClassRecord, error) {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, &ArchiveReadError{Path: jarPath, Err: err}
	}
	defer r.Close()

	var records []types.ClassRecord
	for _, f := range r.File {
		if !strings.HasSuffix(f.Name, types.ClassSuffix) {
			continue
		}
		records = append(records, types.ClassRecord{
			ClassName: EntryToClassName(f.Name),
			FilePath:  f.Name,
			JarPath:   jarPath,
		})
	}
	return records, nil
}

// ReadEntry returns the raw bytes of a single entry.
func ReadEntry(jarPath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, &ArchiveReadError{Path: jarPath, Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &ArchiveReadError{Path: jarPath, Err: err}
		}
		defer rc.Close()

		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, &ArchiveReadError{Path: jarPath, Err: err}
		}
		return b, nil
	}
	return nil, xerrors.Errorf("entry %s not found in %s", entryPath, jarPath)
}

// EntryToClassName converts an archive-internal path to a dot-separated
// qualified name.
func EntryToClassName(entryPath string) string {
	return strings.ReplaceAll(strings.TrimSuffix(entryPath, types.ClassSuffix), "/", ".")
}
