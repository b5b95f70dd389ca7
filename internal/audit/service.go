package audit

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
)

// Entry is the transport shape of one audit row.
type Entry struct {
	ID         uint      `json:"id"`
	ShoeID     uint      `json:"shoe_id"`
	ActionType string    `json:"action_type"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecordInput describes one entry to append.
type RecordInput struct {
	ShoeID     uint   `json:"-"`
	ActionType string `json:"action_type" validate:"required,max=64"`
	Actor      string `json:"actor" validate:"max=255"`
}

// Service appends to and reads a shoe's audit trail.
type Service interface {
	// WithTx binds the service to an open transaction so entries commit or
	// roll back with the change they describe.
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordInput) (*Entry, error)
	Trail(ctx context.Context, shoeID uint) ([]Entry, error)
}

type service struct {
	repo Repository
}

// NewService wires the audit service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordInput) (*Entry, error) {
	action := strings.TrimSpace(input.ActionType)
	if action == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action_type is required")
	}
	if input.ShoeID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shoe_id is required")
	}
	if err := s.ensureShoe(ctx, input.ShoeID); err != nil {
		return nil, err
	}

	row := &models.Audit{
		Base:       models.NewBase(nil),
		ShoeID:     input.ShoeID,
		ActionType: action,
		Actor:      ActorOrSystem(input.Actor),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "record audit entry")
	}
	entry := fromModel(*row)
	return &entry, nil
}

func (s *service) Trail(ctx context.Context, shoeID uint) ([]Entry, error) {
	if shoeID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shoe_id is required")
	}
	if err := s.ensureShoe(ctx, shoeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByShoe(ctx, shoeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load audit trail")
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fromModel(row))
	}
	return entries, nil
}

func (s *service) ensureShoe(ctx context.Context, shoeID uint) error {
	ok, err := s.repo.ShoeExists(ctx, shoeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check shoe")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shoe not found")
	}
	return nil
}

// ActorOrSystem falls back to the system actor for anonymous callers.
func ActorOrSystem(actor string) string {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return enums.ActorSystem
	}
	return actor
}

func fromModel(row models.Audit) Entry {
	return Entry{
		ID:         row.ID,
		ShoeID:     row.ShoeID,
		ActionType: row.ActionType,
		Actor:      row.Actor,
		CreatedAt:  row.CreatedAt,
	}
}
