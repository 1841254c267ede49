package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/clipforge/media-api/api"
	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/internal/database"
	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/internal/services/cache"
	"github.com/clipforge/media-api/internal/services/cleanup"
	"github.com/clipforge/media-api/internal/services/jobs"
	"github.com/clipforge/media-api/internal/services/media"
	"github.com/clipforge/media-api/internal/services/pipeline"
	"github.com/clipforge/media-api/internal/services/providers"
	"github.com/clipforge/media-api/internal/services/workers"
	"github.com/clipforge/media-api/pkg/config"
	"github.com/clipforge/media-api/pkg/download"
	"github.com/clipforge/media-api/pkg/ffmpeg"
)

var (
	serverHost string
	serverPort int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the ClipForge Media API server with the configured settings.

The server accepts media uploads, runs the asynchronous processing pipeline
through its worker pool, and serves the derived transcripts, insights and
highlight clips.

Example:
  media-api serve
  media-api serve --port 9090
  media-api serve --host 0.0.0.0 --port 8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host (overrides config)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Use config values if flags not provided
	if serverHost == "" {
		serverHost = cfg.Server.Host
	}
	if serverPort == 0 {
		serverPort = cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Database
	db, err := database.Initialize(cfg.Database.Path, cfg.Database.LogQueries)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.MediaRecord{}, &models.Job{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Blob storage
	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing blob store: %w", err)
	}

	// Media tooling
	ff := ffmpeg.New(cfg.Processing.FFmpegPath, cfg.Processing.FFprobePath, cfg.Processing.FFmpegTimeout)

	downloadOpts := download.DefaultOptions()
	downloadOpts.TempDir = cfg.Storage.TempDir
	if cfg.Server.MaxUploadBytes > 0 {
		downloadOpts.MaxSize = cfg.Server.MaxUploadBytes
	}
	downloader := download.NewDownloader(downloadOpts)

	// Capability providers; empty API keys leave a provider unconfigured and
	// its stage degrades to a fallback
	transcriber := providers.NewTranscriptionClient(providers.TranscriptionConfig{
		APIKey:      cfg.Providers.Transcription.APIKey,
		APIURL:      cfg.Providers.Transcription.APIURL,
		Model:       cfg.Providers.Transcription.Model,
		Language:    cfg.Providers.Transcription.Language,
		Temperature: cfg.Providers.Transcription.Temperature,
		Timeout:     cfg.Providers.Transcription.Timeout,
	})
	analyzer := providers.NewAnalysisClient(providers.AnalysisConfig{
		APIKey:  cfg.Providers.Analysis.APIKey,
		APIURL:  cfg.Providers.Analysis.APIURL,
		Model:   cfg.Providers.Analysis.Model,
		Timeout: cfg.Providers.Analysis.Timeout,
	})
	diarizer := providers.NewDiarizationClient(providers.DiarizationConfig{
		APIKey:  cfg.Providers.Diarization.APIKey,
		APIURL:  cfg.Providers.Diarization.APIURL,
		Timeout: cfg.Providers.Diarization.Timeout,
	})
	sentiment := providers.NewSentimentClient(providers.SentimentConfig{
		APIKey:  cfg.Providers.Sentiment.APIKey,
		APIURL:  cfg.Providers.Sentiment.APIURL,
		Timeout: cfg.Providers.Sentiment.Timeout,
	})
	topics := providers.NewTopicsClient(analyzer)
	renderer := providers.NewFFmpegRenderer(ff, cfg.Storage.TempDir)

	// Per-record lease: Redis when configured, in-process otherwise
	var lease pipeline.Lease
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		lease = pipeline.NewRedisLease(client, cfg.Processing.LeaseTTL)
	} else {
		lease = pipeline.NewMemoryLease(cfg.Processing.LeaseTTL)
	}

	// Persistence and queue services
	mediaRepo := media.NewRepository(db.DB)
	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	mediaService := media.NewService(mediaRepo, blobs, jobService)

	// Pipeline
	executor := pipeline.NewExecutor(cfg.Processing.RetryAttempts, cfg.Processing.RetryBaseDelay)
	insights := pipeline.NewInsightsAggregator(diarizer, sentiment, topics, executor, cfg.Processing.InsightsTimeout)
	scheduler := workers.NewHighlightScheduler(jobService)
	orchestrator := pipeline.NewOrchestrator(
		mediaRepo, blobs, downloader, ff,
		transcriber, analyzer, renderer,
		insights, scheduler, lease,
		pipeline.Config{
			MaxAttempts:     cfg.Processing.RetryAttempts,
			BaseDelay:       cfg.Processing.RetryBaseDelay,
			InsightsTimeout: cfg.Processing.InsightsTimeout,
			TempDir:         cfg.Storage.TempDir,
			MaxHighlights:   cfg.Processing.MaxHighlights,
			HighlightWindow: cfg.Processing.HighlightWindow,
		},
	)

	// Worker pool
	pool := workers.NewWorkerPool(jobService, cfg.Processing.Workers, cfg.Processing.PollInterval)
	pool.RegisterProcessor(workers.NewPipelineProcessor(orchestrator, jobService))
	pool.RegisterProcessor(workers.NewHighlightProcessor(mediaRepo, blobs, renderer, downloader, jobService, cfg.Storage.TempDir))
	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("starting worker pool: %w", err)
	}
	defer pool.Stop()

	// Background cleanup of temp files and finished jobs
	cleaner := cleanup.NewService(cfg.Storage.TempDir, cfg.Storage.MaxTempAge,
		cfg.Storage.CleanupInterval, jobService, cfg.Processing.JobRetentionDays)
	cleaner.Start(ctx)
	defer cleaner.Stop()

	// HTTP server
	srv := api.NewServer(fmt.Sprintf("%s:%d", serverHost, serverPort), cfg.Server.MaxUploadBytes)
	srv.SetDatabase(db)
	srv.SetDependencies(&types.Dependencies{
		DB:           db,
		MediaService: mediaService,
		MediaRepo:    mediaRepo,
		BlobStore:    blobs,
		JobService:   jobService,
		WorkerPool:   pool,
		Cache:        cache.NewMemoryCache(64),
	})
	if err := srv.Initialize(); err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	// Channel to listen for interrupt signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Printf("ClipForge Media API listening on %s:%d\n", serverHost, serverPort)

	// Wait for interrupt signal or server error
	select {
	case <-stop:
		fmt.Println("\nShutting down server...")
	case err := <-serverErr:
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		fmt.Println("Shutting down server...")
	}

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		return err
	}

	fmt.Println("Server gracefully stopped")
	return nil
}

// buildBlobStore selects the configured blob storage backend
func buildBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	if cfg.Storage.Backend == "s3" {
		return blobstore.NewS3Store(ctx, blobstore.S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.S3.PublicBaseURL,
			ForcePathStyle:  cfg.Storage.S3.ForcePathStyle,
		})
	}
	return blobstore.NewFileStore(cfg.Storage.LocalDir, cfg.Storage.BaseURL)
}
