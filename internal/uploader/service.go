package uploader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/cncparts/dxfsync/internal/model"
	"github.com/cncparts/dxfsync/internal/storage"
)

// RowStore reads part rows and records upload outcomes.
type RowStore interface {
	FetchRows(ctx context.Context) ([]model.PartRow, error)
	UpdateRow(ctx context.Context, id int64, update model.StatusUpdate) error
}

// ObjectStorage uploads local files and tells where they can be fetched.
type ObjectStorage interface {
	Upload(ctx context.Context, key, localPath string) error
	ObjectURL(key string) string
}

// Summary counts row outcomes of one pass.
type Summary struct {
	Total         int
	Skipped       int
	InvalidPrefix int
	NotFound      int
	Uploaded      int
	Failed        int
}

// Service runs a sync pass: list rows, upload eligible files, write back status.
type Service struct {
	rows    RowStore
	store   ObjectStorage
	logger  *slog.Logger
	limiter *rate.Limiter
	now     func() time.Time
}

type Option func(*Service)

// WithThrottle spaces row write-backs at least d apart. Zero disables it.
func WithThrottle(d time.Duration) Option {
	return func(s *Service) {
		if d <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithClock overrides the clock used for UploadedOn.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(rows RowStore, store ObjectStorage, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		rows:    rows,
		store:   store,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one pass over the whole table. Upload failures and missing files
// are recorded per row; failing to list rows or to write a status back aborts the pass.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	s.logger.InfoContext(ctx, "fetching part rows")
	rows, err := s.rows.FetchRows(ctx)
	if err != nil {
		return sum, fmt.Errorf("fetch rows: %w", err)
	}
	sum.Total = len(rows)
	s.logger.InfoContext(ctx, "part rows retrieved", "count", len(rows))

	for _, row := range rows {
		if err := s.processRow(ctx, row, &sum); err != nil {
			return sum, err
		}
	}

	s.logger.InfoContext(ctx, "sync pass complete",
		"total", sum.Total,
		"skipped", sum.Skipped,
		"invalid_prefix", sum.InvalidPrefix,
		"not_found", sum.NotFound,
		"uploaded", sum.Uploaded,
		"failed", sum.Failed,
	)
	return sum, nil
}

func (s *Service) processRow(ctx context.Context, row model.PartRow, sum *Summary) error {
	decision := model.Classify(row)
	// A prefix made only of unsafe characters would leave the key without its product folder.
	if !decision.Skip && storage.Sanitize(row.ProductPrefix) == "" {
		decision = model.Decision{Skip: true, Reason: model.SkipMissingPrefix}
	}
	if decision.Skip {
		if decision.Reason == model.SkipMissingPrefix {
			sum.InvalidPrefix++
			s.logger.ErrorContext(ctx, "empty product prefix", "row_id", row.ID, "file", row.Filename)
			return nil
		}
		sum.Skipped++
		s.logger.DebugContext(ctx, "row skipped", "row_id", row.ID, "reason", decision.Reason.String())
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}

	localPath := filepath.Join(row.FolderPath, row.Filename)
	info, err := os.Stat(localPath)
	if err != nil || !info.Mode().IsRegular() {
		s.logger.WarnContext(ctx, "file not found", "row_id", row.ID, "path", localPath)
		sum.NotFound++
		return s.writeBack(ctx, row.ID, model.FileNotFound())
	}

	key := storage.ObjectKey{
		Prefix:    row.ProductPrefix,
		Thickness: row.Thickness,
		Filename:  row.Filename,
	}.Key()

	s.logger.InfoContext(ctx, "processing row", "row_id", row.ID, "file", row.Filename, "size", humanize.Bytes(uint64(info.Size())), "key", key)

	if err := s.store.Upload(ctx, key, localPath); err != nil {
		s.logger.ErrorContext(ctx, "upload failed", "row_id", row.ID, "file", row.Filename, "error", err)
		sum.Failed++
		return s.writeBack(ctx, row.ID, model.UploadFailed())
	}

	url := s.store.ObjectURL(key)
	s.logger.InfoContext(ctx, "uploaded", "row_id", row.ID, "url", url)
	sum.Uploaded++
	return s.writeBack(ctx, row.ID, model.Uploaded(url, s.now()))
}

func (s *Service) writeBack(ctx context.Context, id int64, update model.StatusUpdate) error {
	if err := s.rows.UpdateRow(ctx, id, update); err != nil {
		return fmt.Errorf("write back row %d: %w", id, err)
	}
	return nil
}
