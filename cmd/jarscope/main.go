package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/jarscope/jarscope/pkg/analyzer"
	"github.com/jarscope/jarscope/pkg/config"
	"github.com/jarscope/jarscope/pkg/fileutil"
	"github.com/jarscope/jarscope/pkg/jar"
	"github.com/jarscope/jarscope/pkg/proxy"
	"github.com/jarscope/jarscope/pkg/server"
	"github.com/jarscope/jarscope/pkg/types"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jarscope",
		Short:         "Resolve Maven dependencies, locate classes and disassemble them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newProxyCmd(), newAnalyzeCmd(), newSearchCmd(), newCleanupCmd())
	return root
}

func newAnalyzer(cfg config.Config) *analyzer.Analyzer {
	return analyzer.New(analyzer.Option{
		MavenHome:   cfg.MavenHome,
		Scope:       cfg.MavenScope,
		JavapPath:   cfg.JavapPath,
		Parallelism: cfg.DecompileWorkers,
	})
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the remote analyzer HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return server.New(newAnalyzer(cfg)).Run(cfg.ServerAddr())
		},
	}
}

func newProxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proxy",
		Short: "Run the MCP forwarding tier in front of a remote analyzer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return proxy.New(cfg.RemoteServerURL).Run(cfg.ProxyAddr())
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		deps      []string
		classes   []string
		workDir   string
		decompile bool
		output    string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "One-shot pipeline run from the command line",
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseCoordinates(deps)
			if err != nil {
				return err
			}

			cfg := config.Load()
			a := newAnalyzer(cfg)
			req := types.AnalyzeRequest{
				Dependencies:  coords,
				TargetClasses: classes,
				WorkDir:       workDir,
			}

			result, err := a.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}

			if decompile {
				return printResult(output, decompileFound(a, result))
			}
			return printResult(output, result)
		},
	}

	cmd.Flags().StringArrayVar(&deps, "dep", nil, "dependency coordinate as group:artifact:version (repeatable)")
	cmd.Flags().StringArrayVar(&classes, "class", nil, "class name to locate (repeatable)")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "work directory (default: a fresh temp dir)")
	cmd.Flags().BoolVar(&decompile, "decompile", false, "also disassemble every located class")
	cmd.Flags().StringVar(&output, "output", "", "write the JSON result to a file instead of stdout")
	cmd.MarkFlagRequired("dep")
	cmd.MarkFlagRequired("class")
	return cmd
}

// decompileFound disassembles the representative of every located class,
// reporting progress on the terminal.
func decompileFound(a *analyzer.Analyzer, analyzed *types.AnalyzeResult) *types.FindAndDecompileResult {
	bar := pb.StartNew(len(analyzed.FoundClasses))
	defer bar.Finish()

	decompiled := make(map[string]string, len(analyzed.FoundClasses))
	for name, records := range analyzed.FoundClasses {
		unit := a.Decompile(types.DecompileRequest{
			JarPath:       records[0].JarPath,
			ClassFilePath: records[0].FilePath,
		})
		decompiled[name] = unit.DecompiledCode
		bar.Increment()
	}

	return &types.FindAndDecompileResult{
		AnalyzeResult:     *analyzed,
		DecompiledClasses: decompiled,
	}
}

func newSearchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "search <pattern> <jar>...",
		Short: "Find classes by name substring in already-downloaded jars",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches := jar.FindByPattern(args[1:], args[0])
			return printResult(output, matches)
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "write the JSON result to a file instead of stdout")
	return cmd
}

func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <work-dir>",
		Short: "Delete a work directory left behind by a previous run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existed, err := fileutil.RemoveDir(args[0])
			if err != nil {
				return err
			}
			if !existed {
				fmt.Fprintf(cmd.OutOrStdout(), "directory not found: %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned up %s\n", args[0])
			return nil
		},
	}
}

func parseCoordinates(deps []string) ([]types.Coordinate, error) {
	var coords []types.Coordinate
	for _, d := range deps {
		parts := strings.Split(d, ":")
		if len(parts) != 3 {
			return nil, xerrors.Errorf("invalid coordinate %q, want group:artifact:version", d)
		}
		coords = append(coords, types.Coordinate{
			GroupID:    parts[0],
			ArtifactID: parts[1],
			Version:    parts[2],
		})
	}
	return coords, nil
}

func printResult(output string, v any) error {
	if output != "" {
		return fileutil.WriteJSON(output, v)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(b))
	return nil
}
