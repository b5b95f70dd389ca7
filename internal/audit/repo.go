package audit

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/repo"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
)

// Repository appends and reads audit rows. There is deliberately no update or
// delete.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.Audit) error
	ListByShoe(ctx context.Context, shoeID uint) ([]models.Audit, error)
	ShoeExists(ctx context.Context, shoeID uint) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns an audit repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, entry *models.Audit) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *repository) ListByShoe(ctx context.Context, shoeID uint) ([]models.Audit, error) {
	var entries []models.Audit
	err := r.DB(ctx).
		Where("shoe_id = ?", shoeID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) ShoeExists(ctx context.Context, shoeID uint) (bool, error) {
	return r.Exists(ctx, &models.Shoe{}, shoeID)
}
