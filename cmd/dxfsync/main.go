package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cncparts/dxfsync/internal/adapters/grist"
	"github.com/cncparts/dxfsync/internal/config"
	"github.com/cncparts/dxfsync/internal/exitcode"
	"github.com/cncparts/dxfsync/internal/logging"
	"github.com/cncparts/dxfsync/internal/model"
	"github.com/cncparts/dxfsync/internal/storage"
	"github.com/cncparts/dxfsync/internal/uploader"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	// Parse CLI flags
	flags := flag.NewFlagSet("dxfsync", flag.ContinueOnError)
	flags.SetOutput(stderr)
	envFile := flags.String("env-file", ".env", "Path of the dotenv file to load")
	runIDStr := flags.String("run-id", "", "Run identifier (UUIDv7); generated when empty")
	if err := flags.Parse(args); err != nil {
		return exitcode.ConfigError
	}

	runID := model.RunID(*runIDStr)
	if runID == "" {
		id, err := model.NewRunID()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitcode.ConfigError
		}
		runID = id
	}
	if err := runID.Validate(); err != nil {
		fmt.Fprintf(stderr, "Usage: %v\n", err)
		return exitcode.ConfigError
	}

	// Ensure environment variables are loaded
	envErr := godotenv.Load(*envFile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitcode.ConfigError
	}

	logger, closer := logging.New(logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: stdout,
	})
	defer closer.Close()
	logger = logger.With("run_id", runID.String())
	slog.SetDefault(logger)

	if envErr != nil {
		logger.Warn("failed to load env file", "path", *envFile, "error", envErr)
	}
	logger.Info("DXF upload started", "bucket", cfg.MinIOBucket, "table", cfg.GristTableID)

	// Create a cancellable context (for graceful shutdown)
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize MinIO client
	minioCfg := storage.MinIOConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
	}
	minioClient, err := storage.NewMinIOClient(ctx, minioCfg)
	if err != nil {
		logger.Error("failed to initialize minio client", "error", err)
		fmt.Fprintln(stderr, "Fatal error - check logs.")
		return exitcode.StorageError
	}

	client := grist.NewClient(cfg.GristAPIURL, cfg.GristAPIKey, cfg.GristDocID, cfg.GristTableID, logger)

	svc := uploader.NewService(client, minioClient, logger, uploader.WithThrottle(cfg.Throttle))

	prepareBucket(ctx, minioClient, cfg.MinIOPublicRead, logger)
	return run(ctx, svc, logger, stderr)
}

// bucketBootstrap is the part of the object store touched before the pass.
type bucketBootstrap interface {
	Bucket() string
	Created() bool
	ApplyPublicReadPolicy(ctx context.Context) error
}

// prepareBucket records bucket creation and applies the public-read policy.
// A policy failure is logged and does not stop the pass.
func prepareBucket(ctx context.Context, b bucketBootstrap, publicRead bool, logger *slog.Logger) {
	if b.Created() {
		logger.InfoContext(ctx, "bucket not found, created", "bucket", b.Bucket())
	}
	if !publicRead {
		return
	}
	if err := b.ApplyPublicReadPolicy(ctx); err != nil {
		logger.ErrorContext(ctx, "failed to apply bucket policy", "bucket", b.Bucket(), "error", err)
		return
	}
	logger.InfoContext(ctx, "applied public-read policy", "bucket", b.Bucket())
}

// run executes the pass and maps its outcome to an exit code.
func run(ctx context.Context, svc *uploader.Service, logger *slog.Logger, stderr io.Writer) int {
	if _, err := svc.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "fatal error in sync pass", "error", err)
		fmt.Fprintln(stderr, "Fatal error - check logs.")
		return exitCodeFor(err)
	}

	logger.InfoContext(ctx, "DXF upload completed successfully")
	return exitcode.Success
}

func exitCodeFor(err error) int {
	if grist.IsAPIError(err) {
		return exitcode.APIError
	}
	return exitcode.NetworkError
}
