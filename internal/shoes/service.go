package shoes

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/audit"
	"github.com/angelmondragon/kickstock-backend/internal/repo"
	"github.com/angelmondragon/kickstock-backend/pkg/db"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/pagination"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the shoe catalog and its three status axes.
type Service interface {
	CreateShoe(ctx context.Context, input CreateShoeInput) (*ShoeDTO, error)
	// CreateInTx creates a shoe and its "created" audit entry on an open
	// transaction owned by the caller.
	CreateInTx(ctx context.Context, tx *gorm.DB, input CreateShoeInput) (*ShoeDTO, error)
	GetShoe(ctx context.Context, id uint) (*ShoeDTO, error)
	ListShoes(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateShoe(ctx context.Context, id uint, input UpdateShoeInput) (*ShoeDTO, error)

	TransitionListing(ctx context.Context, shoeID uint, target enums.ListingStatus, lc ListingContext) (*ShoeDTO, error)
	TransitionPayment(ctx context.Context, shoeID uint, target enums.PaymentStatus, actor string) (*ShoeDTO, error)
	TransitionShipping(ctx context.Context, shoeID uint, target enums.ShippingStatus, sc ShippingContext) (*ShoeDTO, error)

	ListTransactions(ctx context.Context, shoeID uint) ([]TransactionDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	audit   audit.Service
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
}

// NewService wires the shoes service. metrics may be nil.
func NewService(repo Repository, tx txRunner, auditSvc audit.Service, m *metrics.LifecycleMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shoes repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if auditSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "audit service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{repo: repo, tx: tx, audit: auditSvc, metrics: m, logg: logg}, nil
}

func (s *service) CreateShoe(ctx context.Context, input CreateShoeInput) (*ShoeDTO, error) {
	var created *ShoeDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.CreateInTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithShoeID(ctx, created.ID), "shoe created")
	return created, nil
}

func (s *service) CreateInTx(ctx context.Context, tx *gorm.DB, input CreateShoeInput) (*ShoeDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	repo := s.repo.WithTx(tx)

	ok, err := repo.UserExists(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	shoe := newShoe(input)
	if err := repo.Create(ctx, shoe); err != nil {
		return nil, mapWriteError(err, "create shoe")
	}

	if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordInput{
		ShoeID:     shoe.ID,
		ActionType: enums.AuditActionCreated.String(),
		Actor:      input.Actor,
	}); err != nil {
		return nil, err
	}
	return FromModel(shoe), nil
}

func (s *service) GetShoe(ctx context.Context, id uint) (*ShoeDTO, error) {
	shoe, err := loadShoe(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(shoe), nil
}

func (s *service) ListShoes(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{
		UserID: params.UserID,
		Brand:  strings.TrimSpace(params.Brand),
		Limit:  params.Limit,
	}
	if params.ListingStatus != nil {
		if !params.ListingStatus.IsValid() {
			return nil, validation.Field("listing_status", "is invalid")
		}
		query.ListingStatus = params.ListingStatus.String()
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list shoes")
	}
	page, next := pagination.Trim(rows, params.Limit, func(row models.Shoe) uint { return row.ID })

	items := make([]ShoeDTO, 0, len(page))
	for i := range page {
		items = append(items, *FromModel(&page[i]))
	}
	return &ListResult{Items: items, NextCursor: next}, nil
}

func (s *service) UpdateShoe(ctx context.Context, id uint, input UpdateShoeInput) (*ShoeDTO, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}
	updates := updatesFrom(input)

	var updated *models.Shoe
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := loadShoe(ctx, repo, id); err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return mapWriteError(err, "update shoe")
			}
			if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordInput{
				ShoeID:     id,
				ActionType: enums.AuditActionUpdated.String(),
				Actor:      input.Actor,
			}); err != nil {
				return err
			}
		}
		var err error
		updated, err = loadShoe(ctx, repo, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) ListTransactions(ctx context.Context, shoeID uint) ([]TransactionDTO, error) {
	if _, err := loadShoe(ctx, s.repo, shoeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTransactions(ctx, shoeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list transactions")
	}
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, transactionFromModel(row))
	}
	return out, nil
}

func loadShoe(ctx context.Context, r Repository, id uint) (*models.Shoe, error) {
	if id == 0 {
		return nil, validation.Field("shoe_id", "is required")
	}
	shoe, err := r.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shoe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load shoe")
	}
	return shoe, nil
}

func mapWriteError(err error, op string) error {
	switch {
	case db.IsUniqueViolation(err, "upc"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "upc already catalogued").
			WithDetails(map[string]string{"upc": "already exists"})
	case db.IsUniqueViolation(err, "ebay_listing_id"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "listing id already used").
			WithDetails(map[string]string{"ebay_listing_id": "already exists"})
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, op)
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found").
			WithDetails(map[string]string{"user_id": "does not exist"})
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, op)
}

func newShoe(input CreateShoeInput) *models.Shoe {
	width := strings.TrimSpace(input.Width)
	if width == "" {
		width = defaultWidth
	}
	condition := strings.TrimSpace(input.Condition)
	if condition == "" {
		condition = defaultCondition
	}
	return &models.Shoe{
		Base:                    models.NewBase(input.Properties),
		UserID:                  input.UserID,
		Brand:                   strings.TrimSpace(input.Brand),
		Model:                   strings.TrimSpace(input.Model),
		Gender:                  input.Gender,
		Size:                    input.Size,
		Width:                   width,
		Color:                   strings.TrimSpace(input.Color),
		ShoeType:                strings.TrimSpace(input.ShoeType),
		Style:                   strings.TrimSpace(input.Style),
		Category:                trimmedOrNil(input.Category),
		Material:                trimmedOrNil(input.Material),
		HeelType:                trimmedOrNil(input.HeelType),
		Occasion:                trimmedOrNil(input.Occasion),
		Condition:               condition,
		SpecialFeatures:         datatypes.JSONSlice[string](nonNil(input.SpecialFeatures)),
		UPC:                     trimmedOrNil(input.UPC),
		MSRP:                    input.MSRP,
		AverageEbaySellingPrice: input.AverageEbaySellingPrice,
		Description:             input.Description,
		Photos:                  datatypes.JSONSlice[string](nonNil(input.Photos)),
		ListingStatus:           enums.ListingStatusNotListed,
		PaymentStatus:           enums.PaymentStatusPending,
		ShippingStatus:          enums.ShippingStatusNotShipped,
	}
}

func updatesFrom(input UpdateShoeInput) map[string]any {
	updates := map[string]any{}
	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	setString("brand", input.Brand)
	setString("model", input.Model)
	setString("width", input.Width)
	setString("color", input.Color)
	setString("shoe_type", input.ShoeType)
	setString("style", input.Style)
	setString("condition", input.Condition)

	setNullable := func(column string, v *string) {
		if v == nil {
			return
		}
		if trimmed := trimmedOrNil(v); trimmed != nil {
			updates[column] = *trimmed
		} else {
			updates[column] = nil
		}
	}
	setNullable("category", input.Category)
	setNullable("material", input.Material)
	setNullable("heel_type", input.HeelType)
	setNullable("occasion", input.Occasion)
	setNullable("upc", input.UPC)
	setNullable("description", input.Description)

	if input.Gender != nil {
		updates["gender"] = input.Gender.String()
	}
	setDecimal := func(column string, v *decimal.Decimal) {
		if v != nil {
			updates[column] = *v
		}
	}
	setDecimal("size", input.Size)
	setDecimal("msrp", input.MSRP)
	setDecimal("average_ebay_selling_price", input.AverageEbaySellingPrice)

	if input.SpecialFeatures != nil {
		updates["special_features"] = datatypes.JSONSlice[string](nonNil(*input.SpecialFeatures))
	}
	if input.Photos != nil {
		updates["photos"] = datatypes.JSONSlice[string](nonNil(*input.Photos))
	}
	if input.Properties != nil {
		updates["properties"] = datatypes.JSONMap(input.Properties)
	}
	return updates
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
