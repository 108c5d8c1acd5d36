package bytecode

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/jarscope/jarscope/pkg/types"
)

const (
	// Magic is the class-file magic number, 0xCAFEBABE.
	Magic uint32 = 0xCAFEBABE

	// minHeaderLen covers magic + minor + major.
	minHeaderLen = 8
)

// javaReleases maps a class-file major version to the Java release able to
// run it. Unknown majors map to an "Unknown (N)" label, never an error.
var javaReleases = map[int]string{
	45: "1.1",
	46: "1.2",
	47: "1.3",
	48: "1.4",
	49: "5",
	50: "6",
	51: "7",
	52: "8",
	53: "9",
	54: "10",
	55: "11",
	56: "12",
	57: "13",
	58: "14",
	59: "15",
	60: "16",
	61: "17",
	62: "18",
	63: "19",
	64: "20",
	65: "21",
	66: "22",
	67: "23",
	68: "24",
	69: "25",
}

// MalformedClassError reports bytes that are not a class file.
type MalformedClassError struct {
	Reason string
}

func (e *MalformedClassError) Error() string {
	return "malformed class file: " + e.Reason
}

// Inspector extracts structural metadata from raw class-file bytes. The
// minimal implementation reads only the version header; a deep
// implementation may additionally fill ClassFileInfo.Detail.
type Inspector interface {
	Inspect(b []byte) (types.ClassFileInfo, error)
}

type minimal struct{}

// NewMinimal returns the header-only inspector.
func NewMinimal() Inspector {
	return minimal{}
}

func (minimal) Inspect(b []byte) (types.ClassFileInfo, error) {
	if len(b) < minHeaderLen {
		return types.ClassFileInfo{}, &MalformedClassError{Reason: fmt.Sprintf("only %d bytes", len(b))}
	}
	if magic := binary.BigEndian.Uint32(b[0:4]); magic != Magic {
		return types.ClassFileInfo{}, &MalformedClassError{Reason: fmt.Sprintf("bad magic 0x%08X", magic)}
	}

	minor := int(binary.BigEndian.Uint16(b[4:6]))
	major := int(binary.BigEndian.Uint16(b[6:8]))

	return types.ClassFileInfo{
		Magic:          fmt.Sprintf("0x%X", Magic),
		MajorVersion:   major,
		MinorVersion:   minor,
		JavaVersion:    fmt.Sprintf("%d.%d", major, minor),
		JavaCompatible: ReleaseLabel(major),
		Size:           len(b),
	}, nil
}

// ReleaseLabel maps a major version to its Java release label.
func ReleaseLabel(major int) string {
	if label, ok := javaReleases[major]; ok {
		return label
	}
	return fmt.Sprintf("Unknown (%d)", major)
}

type fallback struct {
	deep    Inspector
	minimal Inspector
}

// WithFallback wraps an optional deep inspection capability. The deep
// inspector is attempted first; when it is absent or fails for any reason
// the minimal path answers instead, and the caller only sees which result
// variant came back.
func WithFallback(deep Inspector) Inspector {
	return fallback{
		deep:    deep,
		minimal: NewMinimal(),
	}
}

func (f fallback) Inspect(b []byte) (types.ClassFileInfo, error) {
	if f.deep != nil {
		info, err := f.deep.Inspect(b)
		if err == nil {
			return info, nil
		}
		slog.Debug("Deep inspection unavailable, falling back", slog.String("error", err.Error()))
	}
	return f.minimal.Inspect(b)
}
