package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"threadgrab/internal/downloader"
	"threadgrab/pkg/auth"
	"threadgrab/pkg/config"
	"threadgrab/pkg/ledger"
	"threadgrab/pkg/logger"
	"threadgrab/pkg/ratelimit"
	"threadgrab/pkg/scraper"
	"threadgrab/pkg/storage"
	"threadgrab/pkg/twitter"
	"threadgrab/pkg/ui"
)

// newCredentialManager is replaced in tests
var newCredentialManager = auth.NewManager

// runGrab loads configuration, wires the walk and returns the exit code
func runGrab(cmd *cobra.Command, postID string) int {
	cfg, err := config.Load(configFile, changedFlags(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return scraper.ExitFailure
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return scraper.ExitFailure
	}
	logger.SetLogger(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return grab(ctx, cfg, postID, cmd.OutOrStdout(), cmd.ErrOrStderr(), log)
}

// grab runs one walk. The summary goes to stdout; progress and logs go to
// stderr.
func grab(ctx context.Context, cfg *config.Config, postID string, stdout, stderr io.Writer, log logger.Logger) int {
	key, err := resolveAPIKey(cfg)
	if err != nil {
		log.WithError(err).Error("no api key")
		ui.PrintError("Missing API key", "pass --api-key, set THREADGRAB_API_KEY or run 'threadgrab auth login'")
		return scraper.ExitFailure
	}

	if _, err := exec.LookPath(cfg.Download.Tool); err != nil {
		log.WithError(err).WithField("tool", cfg.Download.Tool).Warn("download tool not found, every download will fail to start")
	}

	store, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		log.WithError(err).WithField("dest", cfg.Output.Directory).Error("cannot prepare destination")
		ui.PrintError("Cannot use destination directory", err.Error())
		return scraper.ExitFailure
	}

	failures := ledger.New()

	client := twitter.NewClient(key, cfg.API.Timeout, failures, log,
		twitter.WithBaseURL(cfg.API.BaseURL),
		twitter.WithLimiter(ratelimit.PerMinute(cfg.API.RequestsPerMinute, cfg.API.Burst)),
	)

	supervisor := downloader.NewSupervisor(downloader.Options{
		Tool:               cfg.Download.Tool,
		Timeout:            cfg.Download.Timeout,
		CheckpointInterval: cfg.Download.CheckpointInterval,
	}, store, failures, log)

	progress := ui.NewProgressDisplay(stderr, cfg.Logging.Level == "disabled")

	walker := scraper.New(client, supervisor, scraper.Options{
		Limit:    cfg.Traversal.Limit,
		StopAt:   cfg.Traversal.StopAt,
		Observer: progress,
		Existing: store,
		Logger:   log,
	})

	out := walker.Run(ctx, postID)
	progress.Complete()

	summary := ledger.Summary{Message: out.Message(), Processed: out.Processed}
	if err := ledger.NewReporter(stdout).Report(summary, failures); err != nil {
		log.WithError(err).Error("failed to write summary")
	}

	if cfg.Notifications.Enabled {
		sendNotification(out, failures.Len(), log)
	}

	return out.ExitCode()
}

// resolveAPIKey falls back to the credential stores when configuration
// carries no key
func resolveAPIKey(cfg *config.Config) (string, error) {
	if cfg.API.APIKey != "" {
		return cfg.API.APIKey, nil
	}

	manager, err := newCredentialManager()
	if err != nil {
		return "", fmt.Errorf("opening credential stores: %w", err)
	}

	key, source, err := auth.ResolveAPIKey("", manager)
	if err != nil {
		return "", err
	}
	logger.GetLogger().WithField("source", source).Debug("using stored api key")
	return key, nil
}

func sendNotification(out scraper.Outcome, failed int, log logger.Logger) {
	notifier := ui.NewNotifier(true)
	message := fmt.Sprintf("%s, %d processed, %d failed", out.Message(), out.Processed, failed)

	var err error
	if out.ExitCode() == scraper.ExitFailure {
		err = notifier.SendError("threadgrab", message)
	} else {
		err = notifier.SendSuccess("threadgrab", message)
	}
	if err != nil {
		log.WithError(err).Warn("desktop notification failed")
	}
}
