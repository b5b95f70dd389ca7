package queue

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

func (s *service) Start(ctx context.Context, queueID uint) (*EntryDTO, error) {
	return s.move(ctx, queueID, enums.ObjectStateInProgress)
}

func (s *service) Cancel(ctx context.Context, queueID uint) (*EntryDTO, error) {
	return s.move(ctx, queueID, enums.ObjectStateCancelled)
}

func (s *service) Archive(ctx context.Context, queueID uint) (*EntryDTO, error) {
	return s.move(ctx, queueID, enums.ObjectStateArchived)
}

func (s *service) move(ctx context.Context, queueID uint, target enums.ObjectState) (*EntryDTO, error) {
	start := time.Now()
	ctx = s.logg.WithQueueID(ctx, queueID)

	var updated *models.QueueEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		entry, err := loadEntry(ctx, r, queueID)
		if err != nil {
			return err
		}
		if !entry.Status.CanTransition(target) {
			return statusConflict(entry.Status, target)
		}
		rows, err := r.UpdateStatus(ctx, queueID, []enums.ObjectState{entry.Status}, target, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update queue status")
		}
		if rows == 0 {
			return statusConflict(entry.Status, target)
		}
		updated, err = loadEntry(ctx, r, queueID)
		return err
	})
	if err != nil {
		s.metrics.IncRejected(metrics.AxisQueue, string(pkgerrors.As(err).Code()))
		return nil, err
	}

	s.metrics.ObserveTransition(metrics.AxisQueue, target.String(), time.Since(start))
	s.logg.Info(s.logg.WithField(ctx, "status", target.String()), "queue status changed")
	return fromModel(updated), nil
}

// Promote turns a queue entry into a catalogued shoe. The shoe, its created
// audit entry and the queue completion commit together.
func (s *service) Promote(ctx context.Context, queueID uint, input shoes.CreateShoeInput, actor string) (*PromoteResult, error) {
	start := time.Now()
	ctx = s.logg.WithQueueID(ctx, queueID)

	var (
		entry *models.QueueEntry
		shoe  *shoes.ShoeDTO
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if queueID == 0 {
			return validation.Field("queue_id", "is required")
		}
		current, err := r.FindWithImages(ctx, queueID)
		if err != nil {
			return mapLoadError(err)
		}
		if !current.Status.CanTransition(enums.ObjectStateCompleted) {
			return statusConflict(current.Status, enums.ObjectStateCompleted)
		}

		input.UserID = current.UserID
		input.Actor = actor
		if len(input.Photos) == 0 {
			input.Photos = promotedPhotos(current)
		}
		created, err := s.shoes.CreateInTx(ctx, tx, input)
		if err != nil {
			return err
		}

		rows, err := r.UpdateStatus(ctx, queueID,
			enums.SourcesFor(enums.ObjectStateCompleted), enums.ObjectStateCompleted,
			map[string]any{"shoe_id": created.ID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "complete queue entry")
		}
		if rows == 0 {
			return statusConflict(current.Status, enums.ObjectStateCompleted)
		}

		shoe = created
		entry, err = r.FindWithImages(ctx, queueID)
		if err != nil {
			return mapLoadError(err)
		}
		return nil
	})
	if err != nil {
		s.metrics.IncRejected(metrics.AxisQueue, string(pkgerrors.As(err).Code()))
		return nil, err
	}

	s.metrics.ObserveTransition(metrics.AxisQueue, enums.ObjectStateCompleted.String(), time.Since(start))
	s.logg.Info(s.logg.WithShoeID(ctx, shoe.ID), "queue entry promoted")
	return &PromoteResult{Entry: fromModel(entry), Shoe: shoe}, nil
}

// promotedPhotos returns the submitted photo references followed by the
// stored image paths.
func promotedPhotos(entry *models.QueueEntry) []string {
	photos := append([]string{}, entry.Photos...)
	seen := make(map[string]struct{}, len(photos))
	for _, p := range photos {
		seen[p] = struct{}{}
	}
	for _, img := range entry.Images {
		if _, ok := seen[img.Filepath]; ok {
			continue
		}
		photos = append(photos, img.Filepath)
	}
	return photos
}

func statusConflict(current, target enums.ObjectState) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "queue entry cannot move from "+current.String()+" to "+target.String()).
		WithDetails(map[string]string{"current": current.String(), "target": target.String()})
}
