package jar_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarscope/jarscope/pkg/jar"
	"github.com/jarscope/jarscope/pkg/types"
)

// writeJar builds a zip archive with the given entries in order.
func writeJar(t *testing.T, path string, entries ...string) string {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for _, name := range entries {
		ew, err := w.Create(name)
		require.NoError(t, err)
		_, err = ew.Write([]byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x34})
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestIndex(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    []string
	}{
		{
			name:    "happy path",
			entries: []string{"org/example/Foo.class", "org/example/Bar.class", "META-INF/MANIFEST.MF"},
			want:    []string{"org.example.Foo", "org.example.Bar"},
		},
		{
			name:    "nested and default package",
			entries: []string{"Top.class", "a/b/c/Deep$Inner.class"},
			want:    []string{"Top", "a.b.c.Deep$Inner"},
		},
		{
			name:    "no classes",
			entries: []string{"META-INF/MANIFEST.MF", "logback.xml"},
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jarPath := writeJar(t, filepath.Join(t.TempDir(), "lib.jar"), tt.entries...)

			records, err := jar.Index(jarPath)
			require.NoError(t, err)

			var got []string
			for _, r := range records {
				got = append(got, r.ClassName)
				assert.Equal(t, jarPath, r.JarPath)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexCorruptArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0644))

	_, err := jar.Index(path)
	var aErr *jar.ArchiveReadError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, path, aErr.Path)
}

func TestReadEntry(t *testing.T) {
	jarPath := writeJar(t, filepath.Join(t.TempDir(), "lib.jar"), "org/example/Foo.class")

	b, err := jar.ReadEntry(jarPath, "org/example/Foo.class")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x34}, b)

	_, err = jar.ReadEntry(jarPath, "org/example/Missing.class")
	assert.Error(t, err)
}

func TestFindByPattern(t *testing.T) {
	dir := t.TempDir()
	jar1 := writeJar(t, filepath.Join(dir, "a.jar"), "org/example/FooService.class", "org/example/Bar.class")
	jar2 := writeJar(t, filepath.Join(dir, "b.jar"), "com/other/FooClient.class")
	jars := []string{jar1, jar2}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{
			name:    "case-insensitive containment",
			pattern: "foo",
			want:    []string{"org.example.FooService", "com.other.FooClient"},
		},
		{
			name:    "package segment",
			pattern: "org.example",
			want:    []string{"org.example.FooService", "org.example.Bar"},
		},
		{
			name:    "no match",
			pattern: "baz",
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range jar.FindByPattern(jars, tt.pattern) {
				got = append(got, r.ClassName)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindByPatternIdempotent(t *testing.T) {
	jars := []string{
		writeJar(t, filepath.Join(t.TempDir(), "a.jar"), "org/example/Foo.class", "org/example/FooBar.class"),
	}

	first := jar.FindByPattern(jars, "foo")
	second := jar.FindByPattern(jars, "foo")
	assert.Equal(t, first, second)
}

func TestFindByPatternSkipsUnreadableJar(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.jar")
	require.NoError(t, os.WriteFile(broken, []byte("junk"), 0644))
	good := writeJar(t, filepath.Join(dir, "good.jar"), "org/example/Foo.class")

	got := jar.FindByPattern([]string{broken, good}, "foo")
	require.Len(t, got, 1)
	assert.Equal(t, "org.example.Foo", got[0].ClassName)
}

func TestFindExact(t *testing.T) {
	dir := t.TempDir()
	jar1 := writeJar(t, filepath.Join(dir, "first.jar"), "org/example/Foo.class", "org/example/Bar.class")
	jar2 := writeJar(t, filepath.Join(dir, "second.jar"), "shaded/org/example/Foo.class")
	jars := []string{jar1, jar2}

	t.Run("single match", func(t *testing.T) {
		found := jar.FindExact(jars, []string{"Bar"})
		require.Len(t, found, 1)
		require.Len(t, found["Bar"], 1)
		assert.Equal(t, "org.example.Bar", found["Bar"][0].ClassName)
	})

	t.Run("case-insensitive match keeps actual name as key", func(t *testing.T) {
		found := jar.FindExact(jars, []string{"bar"})
		require.Contains(t, found, "Bar")
	})

	t.Run("duplicate simple names kept in scan order", func(t *testing.T) {
		found := jar.FindExact(jars, []string{"Foo"})
		require.Len(t, found["Foo"], 2)
		// First match wins: the representative is element 0, from the
		// first jar in scan order.
		assert.Equal(t, "org.example.Foo", found["Foo"][0].ClassName)
		assert.Equal(t, jar1, found["Foo"][0].JarPath)
		assert.Equal(t, "shaded.org.example.Foo", found["Foo"][1].ClassName)
	})

	t.Run("absent name is absent from the mapping", func(t *testing.T) {
		found := jar.FindExact(jars, []string{"Baz"})
		assert.NotContains(t, found, "Baz")
		assert.Empty(t, found)
	})
}

func TestMissingNames(t *testing.T) {
	found := map[string][]types.ClassRecord{
		"Foo": {{ClassName: "org.example.Foo"}},
	}

	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{
			name:      "nothing missing",
			requested: []string{"Foo"},
			want:      []string{},
		},
		{
			name:      "case-insensitive diff",
			requested: []string{"foo", "Baz"},
			want:      []string{"Baz"},
		},
		{
			name:      "request order preserved",
			requested: []string{"Zed", "Foo", "Abc"},
			want:      []string{"Zed", "Abc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jar.MissingNames(tt.requested, found))
		})
	}
}

func TestArchiveReadErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &jar.ArchiveReadError{Path: "x.jar", Err: inner}
	assert.ErrorIs(t, err, inner)
}
