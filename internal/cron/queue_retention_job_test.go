package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/kickstock-backend/internal/queue"
	"github.com/angelmondragon/kickstock-backend/pkg/db"
	"github.com/angelmondragon/kickstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
)

func seedEntry(t *testing.T, client *db.Client, userID uint, status enums.ObjectState, touched time.Time) uint {
	t.Helper()
	entry := models.QueueEntry{Base: models.NewBase(nil), UserID: userID, RawText: "pair", Status: enums.ObjectStatePending}
	require.NoError(t, client.DB().Create(&entry).Error)
	require.NoError(t, client.DB().Model(&models.QueueEntry{}).Where("id = ?", entry.ID).
		UpdateColumns(map[string]any{"status": status.String(), "updated_at": touched}).Error)
	return entry.ID
}

func statusOf(t *testing.T, client *db.Client, id uint) enums.ObjectState {
	t.Helper()
	var entry models.QueueEntry
	require.NoError(t, client.DB().First(&entry, id).Error)
	return entry.Status
}

func TestQueueRetentionArchivesOnlySettledEntries(t *testing.T) {
	client := dbtest.Open(t)
	userID := dbtest.SeedUser(t, client, "ops@example.com")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-45 * 24 * time.Hour)
	recent := now.Add(-2 * 24 * time.Hour)

	oldCompleted := seedEntry(t, client, userID, enums.ObjectStateCompleted, old)
	oldCancelled := seedEntry(t, client, userID, enums.ObjectStateCancelled, old)
	oldPending := seedEntry(t, client, userID, enums.ObjectStatePending, old)
	oldInProgress := seedEntry(t, client, userID, enums.ObjectStateInProgress, old)
	recentCompleted := seedEntry(t, client, userID, enums.ObjectStateCompleted, recent)

	jobIface, err := NewQueueRetentionJob(QueueRetentionJobParams{
		Logger: testLogger(),
		Queue:  queue.NewRepository(client.DB()),
	})
	require.NoError(t, err)
	job := jobIface.(*queueRetentionJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, enums.ObjectStateArchived, statusOf(t, client, oldCompleted))
	assert.Equal(t, enums.ObjectStateArchived, statusOf(t, client, oldCancelled))
	assert.Equal(t, enums.ObjectStatePending, statusOf(t, client, oldPending))
	assert.Equal(t, enums.ObjectStateInProgress, statusOf(t, client, oldInProgress))
	assert.Equal(t, enums.ObjectStateCompleted, statusOf(t, client, recentCompleted))
}

type fakeArchiver struct {
	cutoff time.Time
	err    error
}

func (f *fakeArchiver) ArchiveSettledBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestQueueRetentionCutoffAndErrors(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	archiver := &fakeArchiver{}
	jobIface, err := NewQueueRetentionJob(QueueRetentionJobParams{Logger: testLogger(), Queue: archiver, Retention: 7 * 24 * time.Hour})
	require.NoError(t, err)
	job := jobIface.(*queueRetentionJob)
	job.now = func() time.Time { return now }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, now.Add(-7*24*time.Hour), archiver.cutoff)

	archiver.err = errors.New("db locked")
	assert.Error(t, job.Run(context.Background()))

	_, err = NewQueueRetentionJob(QueueRetentionJobParams{Logger: testLogger()})
	assert.Error(t, err)
}
