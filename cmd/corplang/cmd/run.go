package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corplang/mp/internal/loader"
	"github.com/corplang/mp/pkg/corplang"
	"github.com/spf13/cobra"
)

var (
	evalExpr    string
	stdlibRoot  string
	manifest    string
	searchPaths []string
	showDiag    bool
	traceFlag   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Corplang (.mp) file or inline expression",
	Long: `Execute a Corplang program from a file or inline source.

Examples:
  corplang run script.mp
  corplang run -e "print('hello')"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "run inline source instead of reading from file")
	runCmd.Flags().StringVar(&stdlibRoot, "stdlib-root", "", "packaged stdlib root (overrides CORPLANG_STDLIB_PATH)")
	runCmd.Flags().StringVar(&manifest, "manifest", "", "path to the stdlib manifest (JSON or YAML)")
	runCmd.Flags().StringSliceVar(&searchPaths, "search-path", nil, "additional module search directories")
	runCmd.Flags().BoolVar(&showDiag, "show-internal-diagnostics", false, "include host-origin error causes in diagnostics")
	runCmd.Flags().BoolVar(&traceFlag, "trace", false, "trace frame push/pop to stderr (also enabled by CORPLANG_DEBUG)")
}

func runScript(cmd *cobra.Command, args []string) error {
	source, file, err := readSource(evalExpr, args)
	if err != nil {
		return err
	}

	configDir := "."
	if file != "<eval>" {
		configDir = filepath.Dir(file)
	}
	cfg, err := loader.LoadProjectConfig(configDir)
	if err != nil {
		return fmt.Errorf("reading corplang.yaml: %w", err)
	}

	root := stdlibRoot
	if root == "" {
		root = cfg.StdlibPath
	}
	paths := searchPaths
	paths = append(paths, cfg.ModuleSearchPaths...)
	if file != "<eval>" {
		paths = append(paths, filepath.Dir(file))
	}

	opts := corplang.Options{
		StdlibManifestPath:      manifest,
		StdlibRoot:              root,
		SearchPaths:             paths,
		ShowInternalDiagnostics: showDiag,
	}
	if traceFlag || os.Getenv("CORPLANG_DEBUG") != "" {
		opts.Trace = os.Stderr
	}

	rt, err := corplang.NewRuntime(opts)
	if err != nil {
		return fmt.Errorf("initializing runtime: %w", err)
	}

	if _, err := rt.Run(source, file); err != nil {
		fmt.Fprintln(os.Stderr, corplang.FormatError(err, source))
		return fmt.Errorf("execution failed")
	}
	return nil
}

func readSource(evalExpr string, args []string) (source, file string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("provide a file path or use -e for inline source")
}
