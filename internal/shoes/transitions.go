package shoes

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/internal/audit"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/metrics"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

// step is one guarded transition applied inside a transaction.
type step func(ctx context.Context, r Repository, shoe *models.Shoe) (enums.AuditAction, error)

func (s *service) TransitionListing(ctx context.Context, shoeID uint, target enums.ListingStatus, lc ListingContext) (*ShoeDTO, error) {
	if err := validateListingContext(target, lc); err != nil {
		s.metrics.IncRejected(metrics.AxisListing, string(pkgerrors.CodeValidation))
		return nil, err
	}

	return s.transition(ctx, metrics.AxisListing, shoeID, target.String(), lc.Actor,
		func(ctx context.Context, r Repository, shoe *models.Shoe) (enums.AuditAction, error) {
			current := shoe.ListingStatus
			if !current.CanTransition(target) {
				return "", conflict("listing_status", current.String(), target.String())
			}
			if target == enums.ListingStatusListed && !shoe.ReadyToList() {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "brand, model and size are required before listing").
					WithDetails(missingIdentity(shoe))
			}

			now := time.Now().UTC()
			updates := map[string]any{"listing_status": target.String()}
			listingID := shoe.EbayListingID
			switch target {
			case enums.ListingStatusListed:
				updates["listing_start_date"] = now
				if id := trimmedOrNil(lc.ListingID); id != nil {
					updates["ebay_listing_id"] = *id
					listingID = id
				}
				if url := trimmedOrNil(lc.ListingURL); url != nil {
					updates["ebay_listing_url"] = *url
				}
			case enums.ListingStatusSold:
				updates["listing_end_date"] = now
				updates["buyer_username"] = strings.TrimSpace(*lc.BuyerUsername)
				updates["sale_price"] = *lc.SalePrice
			}

			rows, err := r.UpdateGuarded(ctx, shoe.ID, map[string]any{"listing_status": current.String()}, updates)
			if err != nil {
				return "", mapWriteError(err, "update listing status")
			}
			if rows == 0 {
				return "", conflict("listing_status", current.String(), target.String())
			}

			if err := r.CreateTransaction(ctx, &models.Transaction{
				Base:          models.NewBase(nil),
				ShoeID:        shoe.ID,
				ListingID:     listingID,
				ListingStatus: target,
			}); err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "record listing transaction")
			}
			return enums.ListingAuditAction(target), nil
		})
}

func (s *service) TransitionPayment(ctx context.Context, shoeID uint, target enums.PaymentStatus, actor string) (*ShoeDTO, error) {
	if !target.IsValid() || target == enums.PaymentStatusPending {
		s.metrics.IncRejected(metrics.AxisPayment, string(pkgerrors.CodeValidation))
		return nil, validation.Field("payment_status", "must be Completed or Failed")
	}

	return s.transition(ctx, metrics.AxisPayment, shoeID, target.String(), actor,
		func(ctx context.Context, r Repository, shoe *models.Shoe) (enums.AuditAction, error) {
			if shoe.ListingStatus != enums.ListingStatusSold {
				return "", pkgerrors.New(pkgerrors.CodeConflict, "payment can only settle once the shoe is sold").
					WithDetails(map[string]string{"listing_status": shoe.ListingStatus.String()})
			}
			if !shoe.PaymentStatus.CanTransition(target) {
				return "", conflict("payment_status", shoe.PaymentStatus.String(), target.String())
			}

			guard := map[string]any{
				"payment_status": enums.PaymentStatusPending.String(),
				"listing_status": enums.ListingStatusSold.String(),
			}
			rows, err := r.UpdateGuarded(ctx, shoe.ID, guard, map[string]any{"payment_status": target.String()})
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update payment status")
			}
			if rows == 0 {
				return "", conflict("payment_status", shoe.PaymentStatus.String(), target.String())
			}
			return enums.PaymentAuditAction(target), nil
		})
}

func (s *service) TransitionShipping(ctx context.Context, shoeID uint, target enums.ShippingStatus, sc ShippingContext) (*ShoeDTO, error) {
	if !target.IsValid() || target == enums.ShippingStatusNotShipped {
		s.metrics.IncRejected(metrics.AxisShipping, string(pkgerrors.CodeValidation))
		return nil, validation.Field("shipping_status", "must be Shipped or Delivered")
	}
	if err := validation.Struct(sc); err != nil {
		s.metrics.IncRejected(metrics.AxisShipping, string(pkgerrors.CodeValidation))
		return nil, err
	}

	return s.transition(ctx, metrics.AxisShipping, shoeID, target.String(), sc.Actor,
		func(ctx context.Context, r Repository, shoe *models.Shoe) (enums.AuditAction, error) {
			if shoe.PaymentStatus != enums.PaymentStatusCompleted {
				return "", pkgerrors.New(pkgerrors.CodeConflict, "shipping requires a completed payment").
					WithDetails(map[string]string{"payment_status": shoe.PaymentStatus.String()})
			}
			current := shoe.ShippingStatus
			if !current.CanTransition(target) {
				return "", conflict("shipping_status", current.String(), target.String())
			}

			updates := map[string]any{"shipping_status": target.String()}
			if tracking := trimmedOrNil(sc.TrackingNumber); tracking != nil {
				updates["shipping_tracking_number"] = *tracking
			}
			guard := map[string]any{
				"shipping_status": current.String(),
				"payment_status":  enums.PaymentStatusCompleted.String(),
			}
			rows, err := r.UpdateGuarded(ctx, shoe.ID, guard, updates)
			if err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update shipping status")
			}
			if rows == 0 {
				return "", conflict("shipping_status", current.String(), target.String())
			}
			return enums.ShippingAuditAction(target), nil
		})
}

// transition loads the shoe, applies fn, and appends the audit entry, all in
// one database transaction.
func (s *service) transition(ctx context.Context, axis string, shoeID uint, target, actor string, fn step) (*ShoeDTO, error) {
	start := time.Now()
	ctx = s.logg.WithShoeID(ctx, shoeID)

	var (
		updated *models.Shoe
		from    string
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		shoe, err := loadShoe(ctx, r, shoeID)
		if err != nil {
			return err
		}
		from = currentState(axis, shoe)

		action, err := fn(ctx, r, shoe)
		if err != nil {
			return err
		}
		if _, err := s.audit.WithTx(tx).Record(ctx, audit.RecordInput{
			ShoeID:     shoeID,
			ActionType: action.String(),
			Actor:      actor,
		}); err != nil {
			return err
		}

		updated, err = loadShoe(ctx, r, shoeID)
		return err
	})
	if err != nil {
		code := pkgerrors.As(err).Code()
		s.metrics.IncRejected(axis, string(code))
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"axis": axis, "to": target, "code": string(code),
		}), "transition rejected")
		return nil, err
	}

	s.metrics.ObserveTransition(axis, target, time.Since(start))
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"axis": axis, "from": from, "to": target, "actor": audit.ActorOrSystem(actor),
	}), "transition committed")
	return FromModel(updated), nil
}

func validateListingContext(target enums.ListingStatus, lc ListingContext) error {
	if !target.IsValid() || target == enums.ListingStatusNotListed {
		return validation.Field("listing_status", "must be Listed or Sold")
	}
	if err := validation.Struct(lc); err != nil {
		return err
	}
	if target != enums.ListingStatusSold {
		return nil
	}
	if lc.BuyerUsername == nil || strings.TrimSpace(*lc.BuyerUsername) == "" {
		return validation.Field("buyer_username", "is required to mark a shoe sold")
	}
	if lc.SalePrice == nil {
		return validation.Field("sale_price", "is required to mark a shoe sold")
	}
	return checkMoney("sale_price", lc.SalePrice)
}

func currentState(axis string, shoe *models.Shoe) string {
	switch axis {
	case metrics.AxisPayment:
		return shoe.PaymentStatus.String()
	case metrics.AxisShipping:
		return shoe.ShippingStatus.String()
	default:
		return shoe.ListingStatus.String()
	}
}

func conflict(field, current, target string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConflict, field+" cannot move from "+current+" to "+target).
		WithDetails(map[string]string{"field": field, "current": current, "target": target})
}

func missingIdentity(shoe *models.Shoe) map[string]string {
	missing := map[string]string{}
	if shoe.Brand == "" {
		missing["brand"] = "is required"
	}
	if shoe.Model == "" {
		missing["model"] = "is required"
	}
	if shoe.Size == nil {
		missing["size"] = "is required"
	}
	return missing
}
