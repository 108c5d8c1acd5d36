package types

import "strings"

const (
	// ClassSuffix is the archive entry suffix of compiled classes.
	ClassSuffix = ".class"

	// JarSuffix is the archive suffix harvested from the resolver output.
	JarSuffix = ".jar"
)

// Coordinate identifies a versioned Maven artifact.
type Coordinate struct {
	GroupID    string `json:"groupId"`
	ArtifactID string `json:"artifactId"`
	Version    string `json:"version"`
}

func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// Repository is an optional extra Maven repository emitted into the
// synthesized pom. The core never validates the URL.
type Repository struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Snapshots string `json:"snapshots,omitempty"` // "true" / "false", pom semantics
}

// ClassRecord is one compiled-code entry discovered inside a jar.
type ClassRecord struct {
	ClassName string `json:"class_name"` // dot-separated qualified name
	FilePath  string `json:"file_path"`  // entry path inside the jar
	JarPath   string `json:"jar_path"`
}

// SimpleName returns the last segment of the qualified name.
func (r ClassRecord) SimpleName() string {
	if i := strings.LastIndex(r.ClassName, "."); i >= 0 {
		return r.ClassName[i+1:]
	}
	return r.ClassName
}

// AnalyzeRequest asks for coordinate resolution plus exact class lookup.
type AnalyzeRequest struct {
	Dependencies  []Coordinate `json:"dependencies"`
	TargetClasses []string     `json:"target_classes"`
	Repositories  []Repository `json:"repositories,omitempty"`
	WorkDir       string       `json:"work_dir,omitempty"`
}

// Summary aggregates an analyze run.
type Summary struct {
	TotalArtifacts int      `json:"total_artifacts"`
	FoundCount     int      `json:"found_count"`
	MissingNames   []string `json:"missing_names"`
}

// AnalyzeResult mirrors the analyze wire format. FoundClasses preserves
// jar-scan order inside each list; the representative of a duplicated
// simple name is element 0.
type AnalyzeResult struct {
	FoundClasses map[string][]ClassRecord `json:"found_classes"`
	JarFiles     []string                 `json:"jar_files"`
	WorkDir      string                   `json:"work_dir"`
	TempDir      bool                     `json:"temp_dir"` // work dir was created for this request
	Summary      Summary                  `json:"summary"`
}

// DecompileRequest addresses a single entry inside a downloaded jar.
type DecompileRequest struct {
	JarPath       string `json:"jar_path"`
	ClassFilePath string `json:"class_file_path"`
}

// DecompiledUnit carries disassembler output for one class. When the
// disassembler fails, DecompiledCode holds an inline failure message
// instead of source text.
type DecompiledUnit struct {
	ClassName      string         `json:"class_name"`
	JarPath        string         `json:"jar_path"`
	ClassFilePath  string         `json:"class_file_path"`
	DecompiledCode string         `json:"decompiled_code"`
	Bytecode       *ClassFileInfo `json:"bytecode,omitempty"`
}

// ClassFileInfo is the minimal header summary of a class file. Detail is
// populated only when a deep inspection capability is configured and
// succeeds; callers must handle both shapes.
type ClassFileInfo struct {
	Magic          string       `json:"magic"`
	MajorVersion   int          `json:"major_version"`
	MinorVersion   int          `json:"minor_version"`
	JavaVersion    string       `json:"java_version"`    // "major.minor"
	JavaCompatible string       `json:"java_compatible"` // release label or "Unknown (N)"
	Size           int          `json:"bytecode_size"`
	Detail         *ClassDetail `json:"detail,omitempty"`
}

// ClassDetail is the extended inspection variant.
type ClassDetail struct {
	SuperClass  string   `json:"super_class,omitempty"`
	Interfaces  []string `json:"interfaces,omitempty"`
	AccessFlags []string `json:"access_flags,omitempty"`
	Methods     []string `json:"methods,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	JavaVersion string   `json:"java_version,omitempty"`
}

// FindAndDecompileResult is the analyze result plus per-class disassembly.
type FindAndDecompileResult struct {
	AnalyzeResult
	DecompiledClasses map[string]string `json:"decompiled_classes"`
}
