package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"seo_strategist/config"
	"seo_strategist/generator"
	"seo_strategist/gsc"
	"seo_strategist/pagefetch"
	"seo_strategist/server"
	"seo_strategist/usage"
)

var (
	// Global flags
	configPath string
	verbose    bool
	format     string
	clientFlag string

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "seo-strategist",
	Short: "AI-assisted SEO content strategy",
	Long: `seo-strategist builds topical maps, intent reports, competitor analyses and
content briefs with a hosted model, either from the command line or through the
bundled web UI (see "serve").`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		// Missing credentials fail here, before anything is served or dispatched.
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("path", configPath),
			zap.String("provider", cfg.LLM.Provider),
			zap.Bool("fetch", cfg.Fetch.Enabled))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a, err := newApp(ctx, reg)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := server.Options{
			Tracker:  a.tracker,
			GSC:      gsc.FixtureSource{},
			Logger:   logger.Named("http"),
			Gatherer: reg,
			Timeout:  cfg.LLM.Timeout + 30*time.Second,

			SessionTTL: cfg.SessionTTL,
		}
		if a.fetcher != nil {
			opts.Fetcher = a.fetcher
		}
		srv, err := server.New(a.agent, opts)
		if err != nil {
			return err
		}

		listen := cfg.ServerAddr
		if serveAddr != "" {
			listen = serveAddr
		}
		httpSrv := &http.Server{
			Addr:              listen,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("starting web server", zap.String("addr", listen))
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

// app bundles the collaborators every command needs.
type app struct {
	agent   *generator.Agent
	tracker *usage.Tracker
	fetcher *pagefetch.Fetcher
	closers []func() error
}

func newApp(ctx context.Context, reg prometheus.Registerer) (*app, error) {
	a := &app{}
	llm, err := buildLLM(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	agentOpts := []generator.AgentOption{
		generator.WithLogger(logger.Named("generator")),
		generator.WithMetrics(generator.NewMetrics(reg)),
		generator.WithBriefRegion(cfg.DefaultRegion),
	}
	if cfg.Fetch.Enabled {
		a.fetcher = pagefetch.New(pagefetch.Options{
			Timeout:   cfg.Fetch.Timeout,
			MaxBytes:  cfg.Fetch.MaxBytes,
			UserAgent: cfg.Fetch.UserAgent,
		}, logger.Named("fetch"))
		agentOpts = append(agentOpts, generator.WithPageInspector(a.fetcher))
	}
	a.agent, err = generator.NewAgent(llm, agentOpts...)
	if err != nil {
		return nil, err
	}

	var counter usage.Counter
	if cfg.Usage.DBPath != "" {
		db, err := usage.OpenSQLite(cfg.Usage.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		counter = db
		logger.Debug("usage counters persisted", zap.String("db", db.Path()))
	}
	a.tracker = usage.NewTracker(counter, cfg.Usage.Limits)
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func buildLLM(ctx context.Context, c *config.Config) (generator.LLMClient, error) {
	settings := c.LLMSettings()
	switch c.LLM.Provider {
	case config.ProviderGemini:
		llm, err := generator.NewGeminiLLMFromConfig(ctx, settings)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case config.ProviderOpenAI, config.ProviderDeepSeek:
		// DeepSeek exposes an OpenAI-compatible endpoint via base_url.
		llm, err := generator.NewOpenAILLMFromConfig(settings)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case config.ProviderMock:
		logger.Warn("using canned mock responses; no model is called")
		return generator.MockLLM{}, nil
	default:
		return nil, &generator.ConfigurationError{Setting: "llm.provider", Msg: fmt.Sprintf("provider %q not supported", c.LLM.Provider)}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	rootCmd.PersistentFlags().StringVar(&format, "format", "json", "output format: json, markdown or html")
	rootCmd.PersistentFlags().StringVar(&clientFlag, "client", "cli", "client id used for free-generation limits")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "http listen address (overrides config server_addr)")

	rootCmd.AddCommand(serveCmd)
	addToolCommands(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
