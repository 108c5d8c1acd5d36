package pom

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"golang.org/x/xerrors"

	"github.com/jarscope/jarscope/pkg/hash"
	"github.com/jarscope/jarscope/pkg/types"
)

// FileName is the manifest file name the resolver expects.
const FileName = "pom.xml"

// The synthesized pom carries a throwaway identity; it exists only to hand
// the dependency list to the resolver.
const pomTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
         xsi:schemaLocation="http://maven.apache.org/POM/4.0.0
         http://maven.apache.org/xsd/maven-4.0.0.xsd">
    <modelVersion>4.0.0</modelVersion>

    <groupId>temp.analyzer</groupId>
    <artifactId>dependency-analyzer</artifactId>
    <version>1.0-SNAPSHOT</version>
{{- if .Repositories}}

    <repositories>
{{- range .Repositories}}
        <repository>
            <id>{{.ID}}</id>
            <name>{{.Name}}</name>
            <url>{{.URL}}</url>
            <snapshots>
                <enabled>{{.Snapshots}}</enabled>
            </snapshots>
        </repository>
{{- end}}
    </repositories>
{{- end}}

    <dependencies>
{{- range .Dependencies}}
        <dependency>
            <groupId>{{.GroupID}}</groupId>
            <artifactId>{{.ArtifactID}}</artifactId>
            <version>{{.Version}}</version>
        </dependency>
{{- end}}
    </dependencies>
</project>
`

var tmpl = template.Must(template.New("pom").Parse(pomTemplate))

// ValidationError reports a coordinate missing a required field. Nothing
// is written when Synthesize fails with it.
type ValidationError struct {
	Coordinate types.Coordinate
	Field      string
}

func (e *ValidationError) Error() string {
	return "invalid coordinate " + e.Coordinate.String() + ": missing " + e.Field
}

type manifest struct {
	Repositories []types.Repository
	Dependencies []types.Coordinate
}

// Synthesize writes a resolution pom into dir and returns its path.
// Coordinates are emitted in input order; duplicates pass through to the
// resolver unchanged. Fails with ValidationError before any write when a
// coordinate lacks a required field.
func Synthesize(coords []types.Coordinate, repos []types.Repository, dir string) (string, error) {
	if err := validate(coords); err != nil {
		return "", err
	}

	m := manifest{Dependencies: coords}
	for _, r := range repos {
		if r.Snapshots == "" {
			r.Snapshots = "true"
		}
		m.Repositories = append(m.Repositories, r)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, m); err != nil {
		return "", xerrors.Errorf("failed to render pom: %w", err)
	}

	pomPath := filepath.Join(dir, FileName)
	if err := os.WriteFile(pomPath, buf.Bytes(), 0644); err != nil {
		return "", xerrors.Errorf("failed to write pom: %w", err)
	}
	return pomPath, nil
}

func validate(coords []types.Coordinate) error {
	seen := make(map[uint64]struct{}, len(coords))
	for _, c := range coords {
		switch {
		case c.GroupID == "":
			return &ValidationError{Coordinate: c, Field: "groupId"}
		case c.ArtifactID == "":
			return &ValidationError{Coordinate: c, Field: "artifactId"}
		case c.Version == "":
			return &ValidationError{Coordinate: c, Field: "version"}
		}

		gav := hash.GAV(c.GroupID, c.ArtifactID, c.Version)
		if _, ok := seen[gav]; ok {
			slog.Warn("Duplicate coordinate passed through to the resolver", slog.String("coordinate", c.String()))
		}
		seen[gav] = struct{}{}
	}
	return nil
}
