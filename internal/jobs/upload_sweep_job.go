package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/quotation-api/internal/config"
	"github.com/straye-as/quotation-api/internal/metrics"
	"github.com/straye-as/quotation-api/internal/storage"
	"go.uber.org/zap"
)

const (
	// UploadSweepJobName is the scheduler name of the orphaned upload sweeper
	UploadSweepJobName = "upload_sweep"

	// UploadSweepTimeout bounds a single sweep
	UploadSweepTimeout = 10 * time.Minute
)

// ReferenceLister returns every image URL referenced by a stored quotation
type ReferenceLister interface {
	ListImageURLs(ctx context.Context) (map[string]struct{}, error)
}

// PathResolver maps a public upload path back to its object name
type PathResolver interface {
	ObjectName(publicPath string) (string, bool)
}

// UploadSweepJob deletes uploads that no quotation references.
// Files younger than the grace period are kept since an unsaved editor may still point at them.
type UploadSweepJob struct {
	store   storage.Storage
	refs    ReferenceLister
	paths   PathResolver
	grace   time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewUploadSweepJob(store storage.Storage, refs ReferenceLister, paths PathResolver, grace time.Duration, m *metrics.Metrics, logger *zap.Logger) *UploadSweepJob {
	return &UploadSweepJob{
		store:   store,
		refs:    refs,
		paths:   paths,
		grace:   grace,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (j *UploadSweepJob) Name() string {
	return UploadSweepJobName
}

// Run sweeps once; the scheduler logs its duration and outcome
func (j *UploadSweepJob) Run(ctx context.Context) error {
	removed, err := j.Sweep(ctx)
	if removed > 0 {
		j.logger.Info("removed orphaned uploads", zap.Int("removed", removed))
	}
	return err
}

// Sweep removes unreferenced uploads older than the grace period and returns how many were deleted.
func (j *UploadSweepJob) Sweep(ctx context.Context) (int, error) {
	urls, err := j.refs.ListImageURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list referenced images: %w", err)
	}
	referenced := make(map[string]bool, len(urls))
	for u := range urls {
		if name, ok := j.paths.ObjectName(u); ok {
			referenced[name] = true
		}
	}

	objects, err := j.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list uploads: %w", err)
	}

	cutoff := j.now().Add(-j.grace)
	removed := 0
	for _, obj := range objects {
		if referenced[obj.Name] || obj.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Delete(ctx, obj.Name); err != nil {
			j.logger.Warn("failed to delete orphaned upload", zap.String("name", obj.Name), zap.Error(err))
			continue
		}
		j.logger.Debug("deleted orphaned upload", zap.String("name", obj.Name))
		removed++
	}
	j.metrics.AddSweptUploads(removed)
	return removed, nil
}

// ScheduleUploadSweep registers the sweeper with the schedule and grace period from cfg
func ScheduleUploadSweep(scheduler *Scheduler, cfg *config.JobsConfig, store storage.Storage, refs ReferenceLister, paths PathResolver, m *metrics.Metrics, logger *zap.Logger) error {
	job := NewUploadSweepJob(store, refs, paths, cfg.UploadGracePeriod(), m, logger)
	return scheduler.Schedule(cfg.UploadSweepSchedule, job, UploadSweepTimeout)
}
