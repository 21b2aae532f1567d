// Package scheduler contains background maintenance jobs
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/buzzreel/buzzreel-api/app/middleware"
	businessflow "github.com/buzzreel/buzzreel-api/business_flow"
	"github.com/buzzreel/buzzreel-api/config"
	"github.com/buzzreel/buzzreel-api/repository"
	"github.com/buzzreel/buzzreel-api/utils"
	"github.com/redis/go-redis/v9"
)

// RetentionJob periodically prunes aged interaction events and stale
// cache rows, and recomputes buzz for the configured warm regions.
// Runs are serialized across instances with a redis lock; without redis
// the job still runs, unserialized.
type RetentionJob struct {
	events   repository.InteractionEventRepository
	payloads repository.PayloadCacheRepository
	buzz     businessflow.BuzzFlow
	redis    redis.UniversalClient
	cfg      config.RetentionConfig
	prefix   string
	logger   *log.Logger
	kick     chan struct{}

	logFile *os.File
}

func NewRetentionJob(
	events repository.InteractionEventRepository,
	payloads repository.PayloadCacheRepository,
	buzz businessflow.BuzzFlow,
	redisClient redis.UniversalClient,
	cfg config.RetentionConfig,
	redisPrefix string,
) *RetentionJob {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	j := &RetentionJob{
		events:   events,
		payloads: payloads,
		buzz:     buzz,
		redis:    redisClient,
		cfg:      cfg,
		prefix:   redisPrefix,
		kick:     make(chan struct{}, 1),
	}

	// Initialize job-specific logger (to stdout and persistent file)
	if err := j.initJobLogger(); err != nil {
		s := log.Default()
		j.logger = s
		j.logger.Printf("retention: failed to initialize file logger: %v", err)
	}

	return j
}

// initJobLogger configures a logger that writes to both stdout and a persistent file under data/ (or /data)
func (j *RetentionJob) initJobLogger() error {
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		logPath := filepath.Join(dir, "retention.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		j.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		j.logger = log.New(mw, "retention ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create retention log file in any candidate directory")
}

// Kick queues one out-of-band run. Reports false when a run is already queued.
func (j *RetentionJob) Kick() bool {
	select {
	case j.kick <- struct{}{}:
		return true
	default:
		return false
	}
}

// Start launches the job loop in a background goroutine and returns a stop function
func (j *RetentionJob) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(j.cfg.Interval)
		defer ticker.Stop()

		j.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.runOnce(ctx)
			case <-j.kick:
				j.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (j *RetentionJob) runOnce(ctx context.Context) {
	if !j.acquireLock(ctx) {
		j.logger.Println("run skipped, another instance holds the lock")
		return
	}
	defer j.releaseLock(ctx)

	start := time.Now()

	eventCutoff := utils.UTCNow().Add(-j.cfg.EventRetention)
	pruned, err := j.events.DeleteBefore(ctx, eventCutoff)
	if err != nil {
		j.logger.Println("event prune failed:", err)
	} else if pruned > 0 {
		j.logger.Printf("pruned %d interaction events older than %s", pruned, eventCutoff.Format(time.RFC3339))
	}

	payloadCutoff := utils.UTCNow().Add(-j.cfg.PayloadRetention)
	swept, err := j.payloads.DeleteStaleBefore(ctx, payloadCutoff)
	if err != nil {
		j.logger.Println("cache sweep failed:", err)
	} else if swept > 0 {
		j.logger.Printf("swept %d cache rows refreshed before %s", swept, payloadCutoff.Format(time.RFC3339))
	}

	for _, region := range j.cfg.WarmRegions {
		scored, err := j.buzz.ComputeBuzz(ctx, region)
		if err != nil {
			j.logger.Printf("buzz recompute failed for %s: %v", region, err)
			continue
		}
		middleware.RecordBuzzCompute(region, scored)
		j.logger.Printf("recomputed buzz for %s, %d entities scored", region, scored)
	}

	j.logger.Printf("run finished in %s", time.Since(start).Round(time.Millisecond))
}

func (j *RetentionJob) acquireLock(ctx context.Context) bool {
	if j.redis == nil {
		return true
	}
	lockKey := j.prefix + utils.RetentionLockKey
	ok, err := j.redis.SetNX(ctx, lockKey, "1", j.cfg.Interval/2).Result()
	if err != nil {
		// Redis being down must not stop maintenance
		j.logger.Println("lock acquire failed:", err)
		return true
	}
	return ok
}

func (j *RetentionJob) releaseLock(ctx context.Context) {
	if j.redis == nil {
		return
	}
	lockKey := j.prefix + utils.RetentionLockKey
	if err := j.redis.Del(ctx, lockKey).Err(); err != nil {
		j.logger.Println("lock release failed:", err)
	}
}

// Close releases the log file
func (j *RetentionJob) Close() {
	if j.logFile != nil {
		_ = j.logFile.Close()
	}
}
