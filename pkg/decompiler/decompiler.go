package decompiler

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jarscope/jarscope/pkg/jar"
	"github.com/jarscope/jarscope/pkg/types"
)

// FailurePrefix marks inline disassembler failures in DecompiledCode.
const FailurePrefix = "decompile failed: "

// Decompiler extracts one class entry to a transient file and runs the
// external disassembler over it.
type Decompiler struct {
	javap string
}

func New(javapPath string) Decompiler {
	if javapPath == "" {
		javapPath = "javap"
	}
	return Decompiler{javap: javapPath}
}

// Decompile never returns an error: a disassembler failure is contained as
// an inline message so one bad class cannot abort a batch. The temporary
// extraction directory is removed on every exit path.
func (d Decompiler) Decompile(jarPath, entryPath string) types.DecompiledUnit {
	unit := types.DecompiledUnit{
		ClassName:     jar.EntryToClassName(entryPath),
		JarPath:       jarPath,
		ClassFilePath: entryPath,
	}

	b, err := jar.ReadEntry(jarPath, entryPath)
	if err != nil {
		unit.DecompiledCode = FailurePrefix + err.Error()
		return unit
	}

	tmpDir, err := os.MkdirTemp("", "jarscope-decompile-")
	if err != nil {
		unit.DecompiledCode = FailurePrefix + err.Error()
		return unit
	}
	defer os.RemoveAll(tmpDir)

	classFile := filepath.Join(tmpDir, filepath.Base(entryPath))
	if err := os.WriteFile(classFile, b, 0644); err != nil {
		unit.DecompiledCode = FailurePrefix + err.Error()
		return unit
	}

	// -c: bytecode, -p: private members, -constants: final constant values.
	cmd := exec.Command(d.javap, "-c", "-p", "-constants", classFile)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		diag := stderr.String()
		if diag == "" {
			diag = err.Error()
		}
		slog.Warn("Disassembler failed", slog.String("class", unit.ClassName), slog.String("error", diag))
		unit.DecompiledCode = FailurePrefix + diag
		return unit
	}

	unit.DecompiledCode = stdout.String()
	return unit
}
