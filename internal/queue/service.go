package queue

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/repo"
	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/pagination"
	"github.com/angelmondragon/kickstock-backend/pkg/storage"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

const imageURLExpiry = 15 * time.Minute

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// shoeCreator is the slice of the shoes service Promote needs.
type shoeCreator interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, input shoes.CreateShoeInput) (*shoes.ShoeDTO, error)
}

// UploadLimits bounds AttachImages.
type UploadLimits struct {
	MaxBytes int64
	MaxFiles int
}

// Service exposes intake queue operations.
type Service interface {
	Enqueue(ctx context.Context, input EnqueueInput) (*EntryDTO, error)
	AttachImages(ctx context.Context, queueID uint, uploads []ImageUpload) ([]ImageResult, error)
	Get(ctx context.Context, queueID uint) (*EntryDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)

	Start(ctx context.Context, queueID uint) (*EntryDTO, error)
	Cancel(ctx context.Context, queueID uint) (*EntryDTO, error)
	Archive(ctx context.Context, queueID uint) (*EntryDTO, error)
	Promote(ctx context.Context, queueID uint, input shoes.CreateShoeInput, actor string) (*PromoteResult, error)
}

// PromoteResult pairs the completed entry with the shoe it produced.
type PromoteResult struct {
	Entry *EntryDTO      `json:"queue"`
	Shoe  *shoes.ShoeDTO `json:"shoe"`
}

type service struct {
	repo    Repository
	tx      txRunner
	store   storage.ObjectStore
	shoes   shoeCreator
	limits  UploadLimits
	metrics *metrics.LifecycleMetrics
	logg    *logger.Logger
}

// NewService wires the queue service.
func NewService(repo Repository, tx txRunner, store storage.ObjectStore, shoeSvc shoeCreator, limits UploadLimits, m *metrics.LifecycleMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "queue repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "object store required")
	}
	if shoeSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shoe service required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if limits.MaxBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upload size limit must be positive")
	}
	return &service{repo: repo, tx: tx, store: store, shoes: shoeSvc, limits: limits, metrics: m, logg: logg}, nil
}

func (s *service) Enqueue(ctx context.Context, input EnqueueInput) (*EntryDTO, error) {
	rawText := strings.TrimSpace(input.RawText)
	missing := map[string]string{}
	if input.UserID == 0 {
		missing["user_id"] = "is required"
	}
	if rawText == "" {
		missing["raw_text"] = "is required"
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid queue entry").WithDetails(missing)
	}

	ok, err := s.repo.UserExists(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check user")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	entry := &models.QueueEntry{
		Base:    models.NewBase(input.Properties),
		UserID:  input.UserID,
		RawText: rawText,
		Photos:  datatypes.JSONSlice[string](cleanPhotos(input.Photos)),
		Status:  enums.ObjectStatePending,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create queue entry")
	}

	s.logg.Info(s.logg.WithQueueID(ctx, entry.ID), "queue entry created")
	return fromModel(entry), nil
}

func (s *service) Get(ctx context.Context, queueID uint) (*EntryDTO, error) {
	if queueID == 0 {
		return nil, validation.Field("queue_id", "is required")
	}
	entry, err := s.repo.FindWithImages(ctx, queueID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	dto := fromModel(entry)
	for i := range dto.Images {
		url, err := s.store.PresignGet(ctx, dto.Images[i].Filepath, imageURLExpiry)
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "filepath", dto.Images[i].Filepath), "presign image url failed")
			continue
		}
		dto.Images[i].URL = url
	}
	return dto, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listQuery{UserID: params.UserID, Limit: params.Limit}
	if params.Status != nil {
		if !params.Status.IsValid() {
			return nil, validation.Field("status", "is invalid")
		}
		query.Status = params.Status.String()
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list queue")
	}
	page, next := pagination.Trim(rows, params.Limit, func(row models.QueueEntry) uint { return row.ID })

	items := make([]EntryDTO, 0, len(page))
	for i := range page {
		items = append(items, *fromModel(&page[i]))
	}
	return &ListResult{Items: items, NextCursor: next}, nil
}

func loadEntry(ctx context.Context, r Repository, id uint) (*models.QueueEntry, error) {
	if id == 0 {
		return nil, validation.Field("queue_id", "is required")
	}
	entry, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return entry, nil
}

func mapLoadError(err error) error {
	if repo.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "queue entry not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load queue entry")
}

func cleanPhotos(photos []string) []string {
	out := make([]string, 0, len(photos))
	for _, p := range photos {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
