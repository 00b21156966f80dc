package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codesage/code-sage/internal/domain"
	"github.com/codesage/code-sage/internal/usecase/analyze"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrCriticalIssues indicates the analysis found critical issues and the
// process should exit non-zero.
var ErrCriticalIssues = errors.New("critical issues found")

// ProjectAnalyzer defines the dependency required to run the analyze command.
type ProjectAnalyzer interface {
	AnalyzeProject(ctx context.Context, req analyze.Request) (domain.ProjectResult, error)
}

// AnalyzerOptions carries per-invocation overrides from CLI flags.
type AnalyzerOptions struct {
	Workers   int    // 0 uses the configured default
	Security  bool   // secret scanning on or off
	RulesFile string // extra pattern rules, empty for none
	Enrich    bool   // wire the explanation provider
}

// Renderer writes a finished analysis in one output format.
type Renderer interface {
	Render(out io.Writer, result *domain.ProjectResult) error
}

// RunSummary is one persisted run as shown by the history command.
type RunSummary struct {
	ID          string
	Timestamp   time.Time
	RootPath    string
	TotalFiles  int
	TotalIssues int
	Critical    int
	Duration    time.Duration
}

// HistoryStore lists persisted runs.
type HistoryStore interface {
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}

// ResultRecorder persists a finished analysis.
type ResultRecorder interface {
	SaveResult(ctx context.Context, result *domain.ProjectResult) (string, error)
}

// HookManager installs and removes the git pre-commit hook.
type HookManager interface {
	Install(repoDir string) (string, error)
	Uninstall(repoDir string) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	NewAnalyzer        func(opts AnalyzerOptions) (ProjectAnalyzer, error)
	Renderers          map[string]Renderer
	History            HistoryStore
	Recorder           ResultRecorder
	Hooks              HookManager
	Args               Arguments
	DefaultFormat      string
	DefaultMinSeverity string
	DefaultOutputDir   string
	Version            string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "sage",
		Short: "Static analysis and issue ranking for source trees",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(analyzeCommand(deps))
	root.AddCommand(initCommand())
	root.AddCommand(historyCommand(deps.History))
	root.AddCommand(hooksCommand(deps.Hooks))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func analyzeCommand(deps Dependencies) *cobra.Command {
	var format string
	var outputFile string
	var minSeverity string
	var categories []string
	var workers int
	var noSecurity bool
	var rulesFile string
	var enrich bool
	var failOnCritical bool

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a source tree and report ranked issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.NewAnalyzer == nil {
				return fmt.Errorf("analyzer not configured")
			}

			rootPath := "."
			if len(args) > 0 {
				rootPath = args[0]
			}
			rootPath, err := filepath.Abs(rootPath)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			filter, err := buildFilter(resolveString(minSeverity, deps.DefaultMinSeverity), categories)
			if err != nil {
				return err
			}

			resolvedFormat := resolveString(format, deps.DefaultFormat)
			if resolvedFormat == "" {
				resolvedFormat = "console"
			}
			renderer, ok := deps.Renderers[resolvedFormat]
			if !ok {
				return fmt.Errorf("unknown output format %q (choose one of %s)", resolvedFormat, strings.Join(rendererNames(deps.Renderers), ", "))
			}

			analyzer, err := deps.NewAnalyzer(AnalyzerOptions{
				Workers:   workers,
				Security:  !noSecurity,
				RulesFile: rulesFile,
				Enrich:    enrich,
			})
			if err != nil {
				return fmt.Errorf("configure analyzer: %w", err)
			}

			ctx := cmd.Context()
			result, err := analyzer.AnalyzeProject(ctx, analyze.Request{
				RootPath: rootPath,
				Filter:   filter,
				Enrich:   enrich,
			})
			if err != nil {
				return err
			}

			if deps.Recorder != nil {
				if _, err := deps.Recorder.SaveResult(ctx, &result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record run: %v\n", err)
				}
			}

			// The --output flag wins; otherwise a configured output
			// directory receives the report under a format-derived name.
			if outputFile == "" && deps.DefaultOutputDir != "" {
				if err := os.MkdirAll(deps.DefaultOutputDir, 0755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				outputFile = filepath.Join(deps.DefaultOutputDir, "sage-report."+reportExtension(resolvedFormat))
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				file, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			if err := renderer.Render(out, &result); err != nil {
				return err
			}

			if failOnCritical && result.CountBySeverity(domain.SeverityCritical) > 0 {
				return ErrCriticalIssues
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: console, json, or sarif")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVarP(&minSeverity, "severity", "s", "", "Minimum severity to report (info, low, medium, high, critical)")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Only report issues in these categories")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of concurrent file workers")
	cmd.Flags().BoolVar(&noSecurity, "no-security", false, "Disable secret scanning")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "Load additional pattern rules from a YAML file")
	cmd.Flags().BoolVar(&enrich, "ai", false, "Annotate top issues with AI explanations")
	cmd.Flags().BoolVar(&failOnCritical, "fail-on-critical", false, "Exit non-zero when critical issues are found")

	return cmd
}

func buildFilter(minSeverity string, categories []string) (analyze.Filter, error) {
	var filter analyze.Filter

	if minSeverity != "" {
		severity, err := domain.ParseSeverity(minSeverity)
		if err != nil {
			return analyze.Filter{}, err
		}
		filter.MinSeverity = severity
	}

	for _, raw := range categories {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return analyze.Filter{}, err
		}
		filter.Categories = append(filter.Categories, category)
	}

	return filter, nil
}

func resolveString(flagValue, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return defaultValue
}

func reportExtension(format string) string {
	switch format {
	case "json":
		return "json"
	case "sarif":
		return "sarif"
	default:
		return "txt"
	}
}

func rendererNames(renderers map[string]Renderer) []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter sage.yaml configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			target := filepath.Join(dir, "sage.yaml")

			if !force {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("%s already exists; use --force to overwrite", target)
				}
			}

			if err := os.WriteFile(target, []byte(defaultConfigTemplate), 0644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func historyCommand(history HistoryStore) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if history == nil {
				return fmt.Errorf("run history is disabled; enable the store in sage.yaml")
			}

			runs, err := history.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no recorded runs")
				return nil
			}

			for _, run := range runs {
				fmt.Fprintf(out, "%s  %-30s files=%d issues=%d critical=%d (%v)\n",
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.RootPath,
					run.TotalFiles,
					run.TotalIssues,
					run.Critical,
					run.Duration.Round(time.Millisecond),
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func hooksCommand(hooks HookManager) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage the git pre-commit hook",
	}

	install := &cobra.Command{
		Use:   "install [path]",
		Short: "Install a pre-commit hook that runs the analyzer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hooks == nil {
				return fmt.Errorf("hook management not configured")
			}
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			hookPath, err := hooks.Install(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", hookPath)
			return nil
		},
	}

	uninstall := &cobra.Command{
		Use:   "uninstall [path]",
		Short: "Remove the pre-commit hook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hooks == nil {
				return fmt.Errorf("hook management not configured")
			}
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if err := hooks.Uninstall(dir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "pre-commit hook removed")
			return nil
		},
	}

	cmd.AddCommand(install)
	cmd.AddCommand(uninstall)
	return cmd
}

const defaultConfigTemplate = `# sage configuration
analysis:
  maxWorkers: 4
  maxComplexity: 10
  maxFunctionLength: 50
  maxParameters: 5
  minSeverity: info
  # exclude:
  #   - "*_test.py"

security:
  enabled: true
  entropyThreshold: 4.5

# rules:
#   customRulesFile: my-rules.yaml

output:
  format: console
  # directory: reports

store:
  enabled: true
  # path: ~/.config/sage/history.db

ai:
  enabled: false
  # endpoint: https://api.openai.com/v1/chat/completions
  # apiKey: ${OPENAI_API_KEY}
  # model: gpt-4o-mini
  maxIssues: 10
  timeout: 30s

logging:
  enabled: true
  level: info
  format: human
`
