package sweeper

import (
	"ShareVault/internal/metrics"
	"ShareVault/internal/repo"
	"ShareVault/internal/storage"
	"ShareVault/model"
	"ShareVault/utils"
	"context"
	"log"
	"time"

	"gorm.io/gorm"
)

const lockKey = "sweep:lock"

// Stats summarizes one sweep iteration.
type Stats struct {
	LinksDeactivated int64
	FilesDeleted     int64
	FailedDeletes    int64
	Duration         time.Duration
}

// Sweeper reconciles expired share links and files against object storage.
type Sweeper struct {
	db        *gorm.DB
	store     storage.Store
	interval  time.Duration
	batchSize int
	grace     time.Duration
	retry     utils.RetryPolicy
	lockFn    func(ctx context.Context) (func(), error)
}

// Option adjusts a Sweeper.
type Option func(*Sweeper)

// WithRedisLock makes iterations mutually exclusive across instances.
func WithRedisLock() Option {
	return func(s *Sweeper) {
		s.lockFn = func(ctx context.Context) (func(), error) {
			lock := repo.NewRedisLock(repo.Redis, lockKey, s.interval)
			if err := lock.Lock(ctx); err != nil {
				return nil, err
			}
			return func() { _ = lock.Unlock(ctx) }, nil
		}
	}
}

// New builds a Sweeper. The grace window defaults to one interval so
// in-flight downloads of a just-expired file keep a head start on the
// blob delete.
func New(db *gorm.DB, store storage.Store, interval time.Duration, batchSize int, retry utils.RetryPolicy, opts ...Option) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	s := &Sweeper{
		db:        db,
		store:     store,
		interval:  interval,
		batchSize: batchSize,
		grace:     interval,
		retry:     retry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run loops until ctx is cancelled. Iteration errors are logged and the
// loop continues after a shortened sleep; nothing here is fatal.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("sweeper: started interval=%s batch=%d", s.interval, s.batchSize)
	for {
		sleep := s.interval
		if _, err := s.SweepOnce(ctx); err != nil {
			log.Printf("sweeper: iteration error: %v", err)
			if backoff := s.interval / 5; backoff < sleep {
				sleep = backoff
			}
		}
		select {
		case <-ctx.Done():
			log.Println("sweeper: stopped")
			return
		case <-time.After(sleep):
		}
	}
}

// SweepOnce runs a single bounded reconciliation pass.
func (s *Sweeper) SweepOnce(ctx context.Context) (Stats, error) {
	var stats Stats
	started := time.Now()
	defer func() {
		stats.Duration = time.Since(started)
		metrics.SweepDuration.Set(stats.Duration.Seconds())
	}()

	if s.lockFn != nil {
		unlock, err := s.lockFn(ctx)
		if err != nil {
			// Another instance holds the sweep; skip this round.
			return stats, nil
		}
		defer unlock()
	}

	now := time.Now()

	deactivated, err := s.deactivateExpiredLinks(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.LinksDeactivated = deactivated
	metrics.SweepLinksDeactivated.Add(float64(deactivated))

	deleted, failed, err := s.reapExpiredFiles(ctx, now)
	stats.FilesDeleted = deleted
	stats.FailedDeletes = failed
	metrics.SweepFilesDeleted.Add(float64(deleted))
	metrics.SweepFailedDeletes.Add(float64(failed))
	if err != nil {
		return stats, err
	}

	if stats.LinksDeactivated > 0 || stats.FilesDeleted > 0 || stats.FailedDeletes > 0 {
		log.Printf("sweeper: links_deactivated=%d files_deleted=%d failed_deletes=%d duration=%s",
			stats.LinksDeactivated, stats.FilesDeleted, stats.FailedDeletes, time.Since(started))
	}
	return stats, nil
}

// deactivateExpiredLinks tombstones up to one batch of time-expired links.
// This is advisory cleanup; the consume path re-checks expiry itself.
func (s *Sweeper) deactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE share_links
		SET is_active = ?
		WHERE is_active = ? AND expires_at IS NOT NULL AND expires_at < ?
		LIMIT ?`,
		false, true, now, s.batchSize,
	)
	return res.RowsAffected, res.Error
}

// reapExpiredFiles deletes blobs then rows for up to one batch of files
// whose expiry is at least one grace window in the past. The row only goes
// once the blob is confirmed gone (or confirmed absent), so a failed
// delete is retried on the next sweep instead of orphaning storage.
func (s *Sweeper) reapExpiredFiles(ctx context.Context, now time.Time) (deleted, failed int64, err error) {
	cutoff := now.Add(-s.grace)

	var files []model.File
	if err := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", cutoff).
		Limit(s.batchSize).
		Find(&files).Error; err != nil {
		return 0, 0, err
	}

	for _, file := range files {
		if ctx.Err() != nil {
			return deleted, failed, ctx.Err()
		}
		removeErr := utils.Retry(ctx, s.retry, func() error {
			err := s.store.RemoveObject(ctx, file.BucketName, file.ObjectName)
			if storage.IsNotFound(err) {
				return nil
			}
			return err
		})
		if removeErr != nil {
			failed++
			log.Printf("sweeper: blob delete failed bucket=%s object=%s: %v",
				file.BucketName, file.ObjectName, removeErr)
			continue
		}
		if err := s.db.WithContext(ctx).Delete(&model.File{}, file.ID).Error; err != nil {
			log.Printf("sweeper: metadata delete failed file=%d: %v", file.ID, err)
			continue
		}
		deleted++
	}
	return deleted, failed, nil
}
