package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mabhi256/migration-analyzer/internal/config"
	"github.com/mabhi256/migration-analyzer/internal/fs"
	"github.com/mabhi256/migration-analyzer/internal/logging"
	"github.com/mabhi256/migration-analyzer/internal/render"
	"github.com/mabhi256/migration-analyzer/internal/scan"
	"github.com/mabhi256/migration-analyzer/utils"
)

type options struct {
	outputType  string
	outputPath  string
	exclude     []string
	configPath  string
	concurrency int
	failFast    bool
	logLevel    string
	metricsFile string
}

func (o *options) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.outputType, "output-type", "t", render.TypeText,
		"Report format: text, html, xml or tui")
	flags.StringVarP(&o.outputPath, "output-path", "o", "",
		"Report file (defaults depend on the output type)")
	flags.StringArrayVarP(&o.exclude, "exclude", "e", nil,
		"Gitignore-style pattern of paths to skip (repeatable)")
	flags.StringVarP(&o.configPath, "config", "c", "",
		"Config file (default "+config.DefaultPath+" if present)")
	flags.IntVar(&o.concurrency, "concurrency", 0, "Entries analyzed in parallel (0 = one per CPU)")
	flags.BoolVar(&o.failFast, "fail-fast", false, "Stop at the first entry that fails to analyze")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&o.metricsFile, "metrics-file", "", "Write scan metrics in Prometheus text format to this file")

	_ = cmd.RegisterFlagCompletionFunc("output-type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return render.DefaultFactory().Types(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.MarkFlagFilename("config", "yaml", "yml")
}

// apply overrides cfg with the flags given on the command line.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-type") {
		cfg.OutputType = o.outputType
	}
	if flags.Changed("output-path") {
		cfg.OutputPath = o.outputPath
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, o.exclude...)
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = o.failFast
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
}

func runAnalysis(cmd *cobra.Command, opts *options, inputPath string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return &usageError{err}
	}

	logger := logging.New(cfg.LogLevel, cmd.ErrOrStderr())

	out := cmd.OutOrStdout()
	factory := render.DefaultFactory()
	factory.Register(render.TypeText, func(string) (render.RenderEngine, error) {
		return render.NewTextWriterEngine(out, utils.IsTerminal(out)), nil
	})

	engine, err := factory.Create(cfg.OutputType, cfg.OutputPath)
	if err != nil {
		if errors.Is(err, render.ErrUnknownOutputType) {
			return &usageError{err}
		}
		return err
	}

	metrics := scan.NewMetrics()
	executor := scan.NewExecutor(scan.DefaultAnalyzers(cfg.Rules.RuleConfig(), logger), scan.Options{
		Concurrency: cfg.Concurrency,
		FailFast:    cfg.FailFast,
		Excluder:    fs.NewExcluder(cfg.Exclude),
		Metrics:     metrics,
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := executor.Scan(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("analysis of '%s' failed: %w", inputPath, err)
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("failed to write metrics")
		}
	}

	return engine.Render(report)
}
