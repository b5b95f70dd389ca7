package shoes

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/repo"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/pagination"
)

// Repository persists shoes and their listing history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, shoe *models.Shoe) error
	FindByID(ctx context.Context, id uint) (*models.Shoe, error)
	List(ctx context.Context, params listQuery) ([]models.Shoe, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	// UpdateGuarded applies updates only when every guard column still holds
	// its expected value and returns the number of rows changed.
	UpdateGuarded(ctx context.Context, id uint, guard map[string]any, updates map[string]any) (int64, error)
	UserExists(ctx context.Context, userID uint) (bool, error)

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	ListTransactions(ctx context.Context, shoeID uint) ([]models.Transaction, error)
}

type listQuery struct {
	UserID        uint
	ListingStatus string
	Brand         string
	Limit         int
	Cursor        *pagination.Cursor
}

type repository struct {
	repo.Base
}

// NewRepository returns a shoes repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bind(tx)}
}

func (r *repository) Create(ctx context.Context, shoe *models.Shoe) error {
	return r.DB(ctx).Create(shoe).Error
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Shoe, error) {
	var shoe models.Shoe
	if err := r.DB(ctx).First(&shoe, id).Error; err != nil {
		return nil, err
	}
	return &shoe, nil
}

func (r *repository) List(ctx context.Context, params listQuery) ([]models.Shoe, error) {
	query := r.DB(ctx).Model(&models.Shoe{})
	if params.UserID != 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if params.ListingStatus != "" {
		query = query.Where("listing_status = ?", params.ListingStatus)
	}
	if params.Brand != "" {
		query = query.Where("LOWER(brand) = LOWER(?)", params.Brand)
	}
	if params.Cursor != nil {
		query = query.Where("id < ?", params.Cursor.ID)
	}

	var shoes []models.Shoe
	err := query.Order("id DESC").Limit(pagination.LimitWithBuffer(params.Limit)).Find(&shoes).Error
	return shoes, err
}

func (r *repository) Update(ctx context.Context, id uint, updates map[string]any) error {
	return r.DB(ctx).Model(&models.Shoe{}).Where("id = ?", id).Updates(updates).Error
}

func (r *repository) UpdateGuarded(ctx context.Context, id uint, guard map[string]any, updates map[string]any) (int64, error) {
	result := r.DB(ctx).
		Model(&models.Shoe{}).
		Where("id = ?", id).
		Where(guard).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) UserExists(ctx context.Context, userID uint) (bool, error) {
	return r.Exists(ctx, &models.User{}, userID)
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.DB(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, shoeID uint) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := r.DB(ctx).
		Where("shoe_id = ?", shoeID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
