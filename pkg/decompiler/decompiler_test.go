package decompiler_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarscope/jarscope/pkg/decompiler"
)

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

func writeStubJavap(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "javap")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestDecompile(t *testing.T) {
	jarPath := writeJar(t, filepath.Join(t.TempDir(), "lib.jar"), "org/example/Foo.class")

	tests := []struct {
		name        string
		script      string
		wantText    string
		wantFailure bool
	}{
		{
			name: "stdout captured on success",
			script: `echo "Compiled from \"Foo.java\""
echo "public class org.example.Foo {"`,
			wantText: "public class org.example.Foo {",
		},
		{
			name: "non-zero exit contained as inline failure",
			script: `echo "Error: invalid class file" >&2
exit 2`,
			wantText:    "Error: invalid class file",
			wantFailure: true,
		},
		{
			name:        "silent failure still gets a message",
			script:      `exit 3`,
			wantText:    "exit status 3",
			wantFailure: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decompiler.New(writeStubJavap(t, tt.script))
			unit := d.Decompile(jarPath, "org/example/Foo.class")

			assert.Equal(t, "org.example.Foo", unit.ClassName)
			assert.Equal(t, jarPath, unit.JarPath)
			assert.Equal(t, "org/example/Foo.class", unit.ClassFilePath)
			assert.Contains(t, unit.DecompiledCode, tt.wantText)
			assert.Equal(t, tt.wantFailure, strings.HasPrefix(unit.DecompiledCode, decompiler.FailurePrefix))
		})
	}
}

func TestDecompileFlagsPassed(t *testing.T) {
	jarPath := writeJar(t, filepath.Join(t.TempDir(), "lib.jar"), "org/example/Foo.class")
	argsFile := filepath.Join(t.TempDir(), "args.txt")

	d := decompiler.New(writeStubJavap(t, `echo "$@" > `+argsFile))
	d.Decompile(jarPath, "org/example/Foo.class")

	b, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := string(b)
	assert.Contains(t, args, "-c")
	assert.Contains(t, args, "-p")
	assert.Contains(t, args, "-constants")
	assert.Contains(t, args, "Foo.class")
}

func TestDecompileMissingEntry(t *testing.T) {
	jarPath := writeJar(t, filepath.Join(t.TempDir(), "lib.jar"), "org/example/Foo.class")

	d := decompiler.New(writeStubJavap(t, `echo unused`))
	unit := d.Decompile(jarPath, "org/example/Missing.class")

	assert.True(t, strings.HasPrefix(unit.DecompiledCode, decompiler.FailurePrefix))
	assert.Contains(t, unit.DecompiledCode, "Missing.class")
}

func TestDecompileUnreadableJar(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "broken.jar")
	require.NoError(t, os.WriteFile(broken, []byte("junk"), 0644))

	d := decompiler.New(writeStubJavap(t, `echo unused`))
	unit := d.Decompile(broken, "org/example/Foo.class")

	assert.True(t, strings.HasPrefix(unit.DecompiledCode, decompiler.FailurePrefix))
}
