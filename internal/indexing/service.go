package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gcbaptista/go-lsh-search/config"
	"github.com/gcbaptista/go-lsh-search/index"
	"github.com/gcbaptista/go-lsh-search/internal/logger"
	"github.com/gcbaptista/go-lsh-search/internal/metrics"
	"github.com/gcbaptista/go-lsh-search/model"
)

// BuildReport summarises one finished build.
type BuildReport struct {
	IndexName string            `json:"index_name"`
	Documents int               `json:"documents"`
	Indexed   int               `json:"indexed"`
	Skipped   []SkippedDocument `json:"skipped"`
	Took      time.Duration     `json:"took"`
}

// Service builds indexes, recording metrics and logging each build.
type Service struct {
	metrics *metrics.Metrics
	options BuildOptions
	log     *slog.Logger
}

// NewService creates an indexing Service. m may be nil.
func NewService(m *metrics.Metrics, opts BuildOptions) *Service {
	return &Service{
		metrics: m,
		options: opts,
		log:     logger.WithComponent("indexing"),
	}
}

// Build constructs an index over docs. progress, when non-nil, overrides the
// service's progress callback for this build only.
func (s *Service) Build(ctx context.Context, docs []model.Document, settings config.IndexSettings, progress func(done, total int)) (*index.LSHIndex, BuildReport, error) {
	opts := s.options
	if progress != nil {
		opts.Progress = progress
	}

	s.log.Info("building index",
		"index", settings.Name,
		"documents", len(docs),
		"shingle_size", settings.ShingleSize,
		"signature_length", settings.SignatureLength,
		"band_width", settings.BandWidth,
	)

	start := time.Now()
	idx, skipped, err := Build(ctx, docs, settings, opts)
	took := time.Since(start)

	if err != nil {
		s.metrics.ObserveBuild(took, 0, 0, err)
		s.log.Error("index build failed", "index", settings.Name, "error", err)
		return nil, BuildReport{}, fmt.Errorf("failed to build index '%s': %w", settings.Name, err)
	}

	for _, sd := range skipped {
		s.log.Debug("document skipped", "index", settings.Name, "doc_id", sd.DocID, "reason", sd.Reason)
	}

	report := BuildReport{
		IndexName: settings.Name,
		Documents: len(docs),
		Indexed:   len(docs) - len(skipped),
		Skipped:   skipped,
		Took:      took,
	}
	s.metrics.ObserveBuild(took, report.Indexed, len(skipped), nil)

	s.log.Info("index built",
		"index", settings.Name,
		"indexed", report.Indexed,
		"skipped", len(skipped),
		"bands", idx.NumBands(),
		"took", took,
	)
	return idx, report, nil
}
