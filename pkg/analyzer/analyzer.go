package analyzer

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/xerrors"

	"github.com/jarscope/jarscope/pkg/bytecode"
	"github.com/jarscope/jarscope/pkg/decompiler"
	"github.com/jarscope/jarscope/pkg/jar"
	"github.com/jarscope/jarscope/pkg/maven"
	"github.com/jarscope/jarscope/pkg/pom"
	"github.com/jarscope/jarscope/pkg/types"
)

const defaultParallelism = 4

type Option struct {
	MavenHome   string
	Scope       string
	JavapPath   string
	Deep        bytecode.Inspector // optional deep inspection capability
	Parallelism int64
}

// Analyzer composes manifest synthesis, artifact fetch, indexing, lookup
// and decompilation into the three externally visible operations. It holds
// no per-request state; every request gets its own work directory.
type Analyzer struct {
	fetcher   maven.Fetcher
	decomp    decompiler.Decompiler
	inspector bytecode.Inspector
	parallel  int64
}

func New(opt Option) *Analyzer {
	parallel := opt.Parallelism
	if parallel <= 0 {
		parallel = defaultParallelism
	}
	return &Analyzer{
		fetcher:   maven.NewFetcher(maven.Option{MavenHome: opt.MavenHome, Scope: opt.Scope}),
		decomp:    decompiler.New(opt.JavapPath),
		inspector: bytecode.WithFallback(opt.Deep),
		parallel:  parallel,
	}
}

// Analyze runs synthesize -> fetch -> index -> locate. Any stage failure
// aborts the whole operation; there is no partial success here. A work
// directory created for the request is removed again when the resolve
// stage fails.
func (a *Analyzer) Analyze(ctx context.Context, req types.AnalyzeRequest) (*types.AnalyzeResult, error) {
	workDir := req.WorkDir
	var tempCreated bool
	if workDir == "" {
		var err error
		workDir, err = os.MkdirTemp("", "jarscope-analyze-")
		if err != nil {
			return nil, xerrors.Errorf("unable to create work dir: %w", err)
		}
		tempCreated = true
		slog.Info("Created work dir", slog.String("path", workDir))
	} else if err := os.MkdirAll(workDir, os.ModePerm); err != nil {
		return nil, xerrors.Errorf("unable to create work dir: %w", err)
	}

	cleanup := func() {
		if tempCreated {
			os.RemoveAll(workDir)
		}
	}

	pomPath, err := pom.Synthesize(req.Dependencies, req.Repositories, workDir)
	if err != nil {
		cleanup()
		return nil, xerrors.Errorf("manifest synthesis error: %w", err)
	}

	jars, err := a.fetcher.Fetch(ctx, pomPath, workDir)
	if err != nil {
		cleanup()
		return nil, xerrors.Errorf("fetch error: %w", err)
	}

	found := jar.FindExact(jars, req.TargetClasses)
	missing := jar.MissingNames(req.TargetClasses, found)

	slog.Info("Analyze completed",
		slog.Int("jars", len(jars)),
		slog.Int("found", len(found)),
		slog.Int("missing", len(missing)))

	if jars == nil {
		jars = []string{}
	}
	return &types.AnalyzeResult{
		FoundClasses: found,
		JarFiles:     jars,
		WorkDir:      workDir,
		TempDir:      tempCreated,
		Summary: types.Summary{
			TotalArtifacts: len(jars),
			FoundCount:     len(found),
			MissingNames:   missing,
		},
	}, nil
}

// Decompile disassembles one entry. Disassembler failures are contained
// inside the returned unit, never raised. A header summary of the entry is
// attached when the bytes are readable; a malformed entry just loses the
// summary.
func (a *Analyzer) Decompile(req types.DecompileRequest) *types.DecompiledUnit {
	unit := a.decomp.Decompile(req.JarPath, req.ClassFilePath)

	if b, err := jar.ReadEntry(req.JarPath, req.ClassFilePath); err == nil {
		if info, err := a.inspector.Inspect(b); err == nil {
			unit.Bytecode = &info
		}
	}
	return &unit
}

// FindAndDecompile runs Analyze to completion (all-or-nothing), then
// decompiles the representative record of every located class. The
// decompile stage has partial-failure semantics: one class failing is
// recorded inline and the rest continue. The asymmetry with the resolve
// stage is deliberate.
func (a *Analyzer) FindAndDecompile(ctx context.Context, req types.AnalyzeRequest) (*types.FindAndDecompileResult, error) {
	analyzed, err := a.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	type target struct {
		name   string
		record types.ClassRecord
	}
	var targets []target
	for name, records := range analyzed.FoundClasses {
		// First match wins for duplicated simple names.
		targets = append(targets, target{name: name, record: records[0]})
	}

	texts := make([]string, len(targets))
	sem := semaphore.NewWeighted(a.parallel)
	var wg sync.WaitGroup
	for i, tgt := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Drain the in-flight workers before giving up.
			wg.Wait()
			return nil, xerrors.Errorf("semaphore acquire error: %w", err)
		}
		wg.Add(1)
		go func(i int, tgt target) {
			defer sem.Release(1)
			defer wg.Done()
			unit := a.decomp.Decompile(tgt.record.JarPath, tgt.record.FilePath)
			texts[i] = unit.DecompiledCode
		}(i, tgt)
	}
	wg.Wait()

	decompiled := make(map[string]string, len(targets))
	for i, tgt := range targets {
		decompiled[tgt.name] = texts[i]
	}

	slog.Info("Decompile stage completed", slog.Int("classes", len(decompiled)))
	return &types.FindAndDecompileResult{
		AnalyzeResult:     *analyzed,
		DecompiledClasses: decompiled,
	}, nil
}
