package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/codesage/code-sage/internal/adapter/cli"
	"github.com/codesage/code-sage/internal/adapter/discovery"
	"github.com/codesage/code-sage/internal/adapter/hooks"
	"github.com/codesage/code-sage/internal/adapter/llm"
	"github.com/codesage/code-sage/internal/adapter/output/console"
	jsonwriter "github.com/codesage/code-sage/internal/adapter/output/json"
	"github.com/codesage/code-sage/internal/adapter/output/sarif"
	"github.com/codesage/code-sage/internal/adapter/store/sqlite"
	"github.com/codesage/code-sage/internal/config"
	"github.com/codesage/code-sage/internal/detector"
	"github.com/codesage/code-sage/internal/observability"
	"github.com/codesage/code-sage/internal/rules"
	"github.com/codesage/code-sage/internal/security"
	"github.com/codesage/code-sage/internal/usecase/analyze"
	"github.com/codesage/code-sage/internal/usecase/enrich"
	"github.com/codesage/code-sage/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrCriticalIssues) {
			os.Exit(1)
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "sage",
		EnvPrefix:   "SAGE",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	var logger observability.Logger
	if cfg.Logging.Enabled {
		logger = observability.NewDefaultLogger(
			observability.ParseLevel(cfg.Logging.Level),
			observability.ParseFormat(cfg.Logging.Format),
		)
	}

	// Run-history store, optional
	var recorder cli.ResultRecorder
	var history cli.HistoryStore
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				defer sqliteStore.Close()
				recorder = sqliteStore
				history = &historyAdapter{store: sqliteStore}
			}
		}
	}

	useColor := term.IsTerminal(int(os.Stdout.Fd())) && !color.NoColor

	root := cli.NewRootCommand(cli.Dependencies{
		NewAnalyzer:        analyzerFactory(cfg, logger),
		Renderers:          buildRenderers(useColor),
		History:            history,
		Recorder:           recorder,
		Hooks:              hookAdapter{},
		DefaultFormat:      cfg.Output.Format,
		DefaultMinSeverity: cfg.Analysis.MinSeverity,
		DefaultOutputDir:   cfg.Output.Directory,
		Version:            version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		if errors.Is(err, cli.ErrCriticalIssues) {
			return err
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// analyzerFactory assembles the detection pipeline for one invocation,
// applying per-run flag overrides on top of configuration.
func analyzerFactory(cfg config.Config, logger observability.Logger) func(cli.AnalyzerOptions) (cli.ProjectAnalyzer, error) {
	return func(opts cli.AnalyzerOptions) (cli.ProjectAnalyzer, error) {
		catalog := rules.NewCatalog()
		for _, path := range ruleFiles(cfg, opts) {
			specs, err := rules.LoadFile(path)
			if err != nil {
				return nil, err
			}
			for _, skipErr := range catalog.Extend(specs) {
				log.Printf("warning: skipping rule from %s: %v", path, skipErr)
			}
		}

		limits := detector.DefaultLimits()
		if cfg.Analysis.MaxFunctionLength > 0 {
			limits.MaxFunctionLength = cfg.Analysis.MaxFunctionLength
		}
		if cfg.Analysis.MaxComplexity > 0 {
			limits.MaxComplexity = cfg.Analysis.MaxComplexity
		}
		if cfg.Analysis.MaxParameters > 0 {
			limits.MaxParameters = cfg.Analysis.MaxParameters
		}

		// TypeScript registers before JavaScript so .ts/.tsx never fall
		// through to the wider matcher.
		registry := detector.NewRegistry()
		registry.Register(detector.NewGoDetector(limits))
		registry.Register(detector.NewPythonDetector(limits))
		registry.Register(detector.NewTypeScriptDetector())
		registry.Register(detector.NewJavaScriptDetector())

		var scanner analyze.SecurityScanner
		if opts.Security && cfg.Security.Enabled {
			scanner = security.NewScanner(cfg.Security.EntropyThreshold)
		}

		var enricher analyze.Enricher
		if opts.Enrich {
			provider, err := buildProvider(cfg.AI)
			if err != nil {
				return nil, err
			}
			enricher = enrich.NewEnricher(provider, logger, cfg.AI.MaxIssues)
		}

		workers := opts.Workers
		if workers <= 0 {
			workers = cfg.Analysis.MaxWorkers
		}

		walker := discovery.NewWalker(discovery.WalkerOptions{
			Extensions: supportedExtensions(),
			Excludes:   cfg.Analysis.Exclude,
		})

		return analyze.NewOrchestrator(analyze.OrchestratorDeps{
			Registry:   registry,
			Patterns:   detector.NewPatternDetector(catalog),
			Aggregator: analyze.NewAggregator(),
			Discovery:  walker,
			Reader:     discovery.NewReader(),
			Security:   scanner,
			Enricher:   enricher,
			Logger:     logger,
			MaxWorkers: workers,
		}), nil
	}
}

func ruleFiles(cfg config.Config, opts cli.AnalyzerOptions) []string {
	var paths []string
	if cfg.Rules.CustomRulesFile != "" {
		paths = append(paths, cfg.Rules.CustomRulesFile)
	}
	if opts.RulesFile != "" {
		paths = append(paths, opts.RulesFile)
	}
	return paths
}

func buildProvider(cfg config.AIConfig) (enrich.Provider, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("ai enrichment requested but ai.enabled is false in config")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ai.endpoint is required for enrichment")
	}

	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid ai.timeout %q: %w", cfg.Timeout, err)
		}
		timeout = parsed
	}

	return llm.NewClient(cfg.Endpoint, cfg.APIKey, cfg.Model, timeout), nil
}

func buildRenderers(useColor bool) map[string]cli.Renderer {
	return map[string]cli.Renderer{
		"console": console.NewWriter(useColor),
		"json":    jsonwriter.NewWriter(),
		"sarif":   sarif.NewWriter(version.Value()),
	}
}

func supportedExtensions() []string {
	return []string{".go", ".py", ".pyw", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx"}
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sage"))
	}
	return paths
}

// historyAdapter bridges the sqlite store to the CLI's history port.
type historyAdapter struct {
	store *sqlite.Store
}

func (h *historyAdapter) ListRuns(ctx context.Context, limit int) ([]cli.RunSummary, error) {
	runs, err := h.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]cli.RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, cli.RunSummary{
			ID:          run.ID,
			Timestamp:   run.Timestamp,
			RootPath:    run.RootPath,
			TotalFiles:  run.TotalFiles,
			TotalIssues: run.TotalIssues,
			Critical:    run.Critical,
			Duration:    run.Duration,
		})
	}
	return summaries, nil
}

// hookAdapter constructs a hook manager per repository directory.
type hookAdapter struct{}

func (hookAdapter) Install(repoDir string) (string, error) {
	return hooks.NewManager(repoDir).Install()
}

func (hookAdapter) Uninstall(repoDir string) error {
	return hooks.NewManager(repoDir).Uninstall()
}
