package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge/internal/database"
	"github.com/clipforge/clipforge/internal/database/migrations"
	internalhttp "github.com/clipforge/clipforge/internal/http"
	"github.com/clipforge/clipforge/internal/http/handlers"
	"github.com/clipforge/clipforge/internal/pipeline"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/scheduler"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/stages"
	"github.com/clipforge/clipforge/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the clipforge server",
	Long: `Start the clipforge HTTP server and background loops.

The server provides:
- REST API for content items, pipeline runs and job tracking
- Optional cron-based discovery of selected items
- Periodic statistics collection for published videos
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().String("database", "", "Database DSN (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("database") {
		cfg.Database.DSN, _ = cmd.Flags().GetString("database")
	}

	setupLogger(cfg)
	logger := slog.Default()

	logger.Info("starting clipforge",
		slog.String("version", version.Short()),
		slog.String("driver", cfg.Database.Driver),
	)

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", slog.Any("error", err))
		}
	}()

	migrator := migrations.NewMigrator(db.DB, logger)
	migrator.RegisterAll(migrations.AllMigrations())
	if err := migrator.Up(cmd.Context()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	contentRepo := repository.NewContentRepository(db.DB)
	jobRepo := repository.NewVideoJobRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	statsRepo := repository.NewVideoStatsRepository(db.DB)
	newsRepo := repository.NewNewsRepository(db.DB)

	clients := stages.NewHTTPClients(cfg.Providers, logger)

	orchestrator := pipeline.NewOrchestrator(contentRepo, jobRepo, videoRepo, clients, cfg.Pipeline, logger)
	contentSvc := service.NewContentService(contentRepo, logger)
	newsSvc := service.NewNewsService(clients.News, newsRepo, logger)
	jobSvc := service.NewJobService(orchestrator, jobRepo, contentRepo, newsRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(contentRepo, jobSvc, cfg.Scheduler).WithLogger(logger)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	if cfg.Stats.Enabled {
		collector := scheduler.NewStatsCollector(videoRepo, statsRepo, clients.Stats, cfg.Stats).WithLogger(logger)
		if err := collector.Start(ctx); err != nil {
			return fmt.Errorf("starting stats collector: %w", err)
		}
		defer collector.Stop()
	}

	server := internalhttp.NewServer(cfg.Server, logger, version.Short())
	handlers.NewHealthHandler(version.Short()).WithDB(db.DB).Register(server.API())
	handlers.NewContentHandler(contentSvc, newsSvc).WithLogger(logger).Register(server.API())
	handlers.NewJobHandler(orchestrator, jobSvc).WithLogger(logger).Register(server.API())

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("running server: %w", err)
	}

	logger.Info("clipforge stopped")
	return nil
}
