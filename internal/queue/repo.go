package queue

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/repo"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	"github.com/angelmondragon/kickstock-backend/pkg/pagination"
)

// Repository persists queue entries and their images.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.QueueEntry) error
	FindByID(ctx context.Context, id uint) (*models.QueueEntry, error)
	FindWithImages(ctx context.Context, id uint) (*models.QueueEntry, error)
	List(ctx context.Context, params listQuery) ([]models.QueueEntry, error)
	// UpdateStatus moves the entry to target when its status is one of from and
	// returns the number of rows changed.
	UpdateStatus(ctx context.Context, id uint, from []enums.ObjectState, target enums.ObjectState, extra map[string]any) (int64, error)
	CreateImage(ctx context.Context, image *models.Image) error
	UserExists(ctx context.Context, userID uint) (bool, error)
	// ArchiveSettledBefore archives Completed and Cancelled entries last
	// touched before cutoff.
	ArchiveSettledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type listQuery struct {
	UserID uint
	Status string
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	repo.Base
}

// NewRepository returns a queue repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, entry *models.QueueEntry) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	if err := r.DB(ctx).First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindWithImages(ctx context.Context, id uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := r.DB(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, params listQuery) ([]models.QueueEntry, error) {
	query := r.DB(ctx).Model(&models.QueueEntry{})
	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("id < ?", params.Cursor.ID)
	}

	var entries []models.QueueEntry
	err := query.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&entries).Error
	return entries, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, from []enums.ObjectState, target enums.ObjectState, extra map[string]any) (int64, error) {
	sources := make([]string, 0, len(from))
	for _, state := range from {
		sources = append(sources, state.String())
	}
	updates := map[string]any{"status": target.String()}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.DB(ctx).
		Model(&models.QueueEntry{}).
		Where("id = ?", id).
		Where("status IN ?", sources).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) CreateImage(ctx context.Context, image *models.Image) error {
	return r.DB(ctx).Create(image).Error
}

func (r *repository) UserExists(ctx context.Context, userID uint) (bool, error) {
	return r.Exists(ctx, &models.User{}, userID)
}

func (r *repository) ArchiveSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sources := make([]string, 0, 2)
	for _, state := range enums.SourcesFor(enums.ObjectStateArchived) {
		sources = append(sources, state.String())
	}
	result := r.DB(ctx).
		Model(&models.QueueEntry{}).
		Where("status IN ?", sources).
		Where("updated_at < ?", cutoff).
		Updates(map[string]any{"status": enums.ObjectStateArchived.String()})
	return result.RowsAffected, result.Error
}
