package pom_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarscope/jarscope/pkg/pom"
	"github.com/jarscope/jarscope/pkg/types"
)

func TestSynthesize(t *testing.T) {
	tests := []struct {
		name         string
		coords       []types.Coordinate
		repos        []types.Repository
		wantContains []string
		wantErrField string
	}{
		{
			name: "happy path",
			coords: []types.Coordinate{
				{GroupID: "org.example", ArtifactID: "lib", Version: "1.0"},
			},
			wantContains: []string{
				"<groupId>temp.analyzer</groupId>",
				"<artifactId>dependency-analyzer</artifactId>",
				"<version>1.0-SNAPSHOT</version>",
				"<groupId>org.example</groupId>",
				"<artifactId>lib</artifactId>",
				"<version>1.0</version>",
			},
		},
		{
			name: "with repositories",
			coords: []types.Coordinate{
				{GroupID: "org.example", ArtifactID: "lib", Version: "1.0-SNAPSHOT"},
			},
			repos: []types.Repository{
				{ID: "internal", Name: "Internal Repo", URL: "https://repo.internal.example/maven2"},
			},
			wantContains: []string{
				"<id>internal</id>",
				"<name>Internal Repo</name>",
				"<url>https://repo.internal.example/maven2</url>",
				"<enabled>true</enabled>",
			},
		},
		{
			name: "duplicate coordinates pass through",
			coords: []types.Coordinate{
				{GroupID: "org.example", ArtifactID: "lib", Version: "1.0"},
				{GroupID: "org.example", ArtifactID: "lib", Version: "1.0"},
			},
			wantContains: []string{"<artifactId>lib</artifactId>"},
		},
		{
			name: "missing groupId",
			coords: []types.Coordinate{
				{ArtifactID: "lib", Version: "1.0"},
			},
			wantErrField: "groupId",
		},
		{
			name: "missing artifactId",
			coords: []types.Coordinate{
				{GroupID: "org.example", Version: "1.0"},
			},
			wantErrField: "artifactId",
		},
		{
			name: "missing version",
			coords: []types.Coordinate{
				{GroupID: "org.example", ArtifactID: "lib"},
			},
			wantErrField: "version",
		},
		{
			name: "later coordinate invalid",
			coords: []types.Coordinate{
				{GroupID: "org.example", ArtifactID: "lib", Version: "1.0"},
				{GroupID: "org.example", ArtifactID: "other"},
			},
			wantErrField: "version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			pomPath, err := pom.Synthesize(tt.coords, tt.repos, dir)

			if tt.wantErrField != "" {
				var vErr *pom.ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantErrField, vErr.Field)

				// Validation failure must not leave a file behind.
				_, statErr := os.Stat(filepath.Join(dir, pom.FileName))
				assert.True(t, os.IsNotExist(statErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, pom.FileName), pomPath)

			b, err := os.ReadFile(pomPath)
			require.NoError(t, err)
			content := string(b)
			for _, want := range tt.wantContains {
				assert.Contains(t, content, want)
			}
		})
	}
}

func TestSynthesizeOrderPreserved(t *testing.T) {
	coords := []types.Coordinate{
		{GroupID: "z.example", ArtifactID: "zz", Version: "3"},
		{GroupID: "a.example", ArtifactID: "aa", Version: "1"},
	}

	pomPath, err := pom.Synthesize(coords, nil, t.TempDir())
	require.NoError(t, err)

	b, err := os.ReadFile(pomPath)
	require.NoError(t, err)
	content := string(b)

	// Coordinates are emitted in input order, not sorted.
	assert.Less(t, strings.Index(content, "<artifactId>zz</artifactId>"), strings.Index(content, "<artifactId>aa</artifactId>"))
}
