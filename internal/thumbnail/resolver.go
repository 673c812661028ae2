package thumbnail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/psdplots/plot-catalog-service/internal/domain"
	"github.com/psdplots/plot-catalog-service/internal/observability"
)

// Resolver returns the thumbnail of the archive node at path.
type Resolver interface {
	Resolve(ctx context.Context, path string) (domain.ThumbnailChoice, bool, error)
}

// ScanResolver resolves thumbnails by walking the archive on every call.
type ScanResolver struct {
	walker  Walker
	timeout time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewScanResolver creates an uncached resolver. A positive timeout bounds
// each scan.
func NewScanResolver(w Walker, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *ScanResolver {
	return &ScanResolver{
		walker:  w,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

func (r *ScanResolver) Resolve(ctx context.Context, path string) (domain.ThumbnailChoice, bool, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	choice, ok, visited, err := Select(ctx, r.walker, path)
	elapsed := time.Since(start)

	r.metrics.ScansTotal.Inc()
	r.metrics.ScanDuration.Observe(elapsed.Seconds())
	r.metrics.FilesScanned.Add(float64(visited))

	if err != nil {
		r.metrics.ScanErrors.Inc()
		r.logger.Warn("thumbnail scan failed", "path", path, "files", visited, "error", err)
		return domain.ThumbnailChoice{}, false, fmt.Errorf("scan %s: %w", path, err)
	}

	tier := "none"
	if ok {
		tier = choice.Tier.String()
	}
	r.metrics.ThumbnailTier.WithLabelValues(tier).Inc()
	r.logger.Debug("thumbnail resolved",
		"path", path,
		"tier", tier,
		"files", visited,
		"duration", elapsed,
	)
	return choice, ok, nil
}
