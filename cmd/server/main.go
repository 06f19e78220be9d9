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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"timetabler/internal/config"
	"timetabler/internal/handler"
	"timetabler/internal/logger"
	"timetabler/internal/metrics"
	"timetabler/internal/parser"
	_ "timetabler/internal/parser/claude"
	_ "timetabler/internal/parser/gemini"
	_ "timetabler/internal/parser/openai"
	"timetabler/internal/port"
	"timetabler/internal/repository/postgres"
	"timetabler/internal/router"
	"timetabler/internal/service"
	"timetabler/internal/storage/noop"
	s3storage "timetabler/internal/storage/s3"
	"timetabler/internal/textextract"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := postgres.MigrateUp(&cfg.DB); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info().Msg("database migrations applied")
	}

	// Initialize repositories
	timetableRepo := postgres.NewTimetableRepo(db)

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		log.Warn().Msg("S3 archive disabled, uploads are not retained")
		storage = noop.NewNoopStorage(log)
	}

	// Initialize parser
	docParser, err := parser.Build(&cfg.Parser, log)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}
	log.Info().
		Str("mode", cfg.Parser.Mode).
		Str("primary", cfg.Parser.PrimaryConfig().Provider).
		Strs("registered", parser.Providers()).
		Msg("parser ready")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize services
	timetableSvc := service.NewTimetableService(
		timetableRepo,
		storage,
		docParser,
		textextract.NewDocxExtractor(cfg.Upload.TempDir, log),
		m,
		service.TimetableServiceConfig{
			Bucket:       cfg.S3.Bucket,
			MaxBytes:     cfg.Upload.MaxBytes(),
			DefaultTitle: cfg.Upload.DefaultTitle,
		},
		log,
	)

	// Initialize handlers
	timetableH := handler.NewTimetableHandler(timetableSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, log, m, timetableH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
