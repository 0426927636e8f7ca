package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/rssfeed/internal/app"
	"github.com/samvad-hq/rssfeed/internal/config"
	"github.com/samvad-hq/rssfeed/internal/logger"
	"github.com/samvad-hq/rssfeed/internal/server"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rssfeed",
		Short:         "Serve RSS 2.0 feeds built from sitemaps and og: metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newServeCmd(), newGenerateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var sourceID, out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one feed and write it to stdout or a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), sourceID, out)
		},
	}
	cmd.Flags().StringVar(&sourceID, "source", "", "source id (default: configured default source)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	return cmd
}

// bootstrap loads config, logger and runtime. The returned cleanup must be called.
func bootstrap(ctx context.Context, adjust func(*config.Config)) (*app.Runtime, logger.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if adjust != nil {
		adjust(cfg)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		_ = logger.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := rt.Close(); err != nil {
			log.ErrorObj("runtime close failed", "error", err)
		}
		_ = logger.Close()
	}
	return rt, log, cleanup, nil
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, log, cleanup, err := bootstrap(ctx, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	log.InfoObj("rssfeed starting", "config", rt.Config)

	srv := server.New(server.Options{
		Addr:     rt.Config.HTTPAddr,
		AppName:  rt.Config.AppName,
		Dynamic:  rt.Config.Dynamic,
		Debug:    rt.Config.Env == "development" && rt.Config.LogLevel == "debug",
		Gatherer: rt.Gatherer,
	}, rt.Generator, rt, rt.Metrics, log)

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func runGenerate(parent context.Context, sourceID, out string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, _, cleanup, err := bootstrap(ctx, func(cfg *config.Config) {
		if out == "" {
			// keep stdout for the feed itself
			cfg.LogOutput = "stderr"
		}
	})
	if err != nil {
		return err
	}
	defer cleanup()

	src, ok := rt.Source(sourceID)
	if !ok {
		return fmt.Errorf("unknown source %q (known: %v)", sourceID, rt.Sources.IDs())
	}

	body, err := rt.Generator.Generate(ctx, src)
	if err != nil {
		return fmt.Errorf("generate %s: %w", src.ID, err)
	}

	if out == "" {
		_, err = os.Stdout.Write(body)
		return err
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
