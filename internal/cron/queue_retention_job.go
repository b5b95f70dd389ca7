package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
)

const (
	queueRetentionJobName = "queue-retention"
	defaultQueueRetention = 30 * 24 * time.Hour
)

type queueArchiver interface {
	ArchiveSettledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type QueueRetentionJobParams struct {
	Logger    *logger.Logger
	Queue     queueArchiver
	Metrics   *metrics.JobMetrics
	Retention time.Duration
}

// NewQueueRetentionJob archives queue entries that finished (Completed or
// Cancelled) more than Retention ago.
func NewQueueRetentionJob(params QueueRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("queue repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultQueueRetention
	}
	return &queueRetentionJob{
		logg:      params.Logger,
		queue:     params.Queue,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type queueRetentionJob struct {
	logg      *logger.Logger
	queue     queueArchiver
	metrics   *metrics.JobMetrics
	retention time.Duration
	now       func() time.Time
}

func (j *queueRetentionJob) Name() string { return queueRetentionJobName }

func (j *queueRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	archived, err := j.queue.ArchiveSettledBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("archive settled queue entries: %w", err)
	}
	j.metrics.AddAffected(queueRetentionJobName, archived)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": int(j.retention.Hours() / 24),
		"rows_archived":  archived,
	}), "queue retention complete")
	return nil
}
