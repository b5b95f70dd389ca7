package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/kickstock-backend/api/middleware"
	"github.com/angelmondragon/kickstock-backend/api/responses"
	"github.com/angelmondragon/kickstock-backend/api/validators"
	"github.com/angelmondragon/kickstock-backend/internal/shoes"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
	"github.com/angelmondragon/kickstock-backend/pkg/pagination"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

type listingRequest struct {
	ListingStatus string           `json:"listing_status" validate:"required"`
	ListingID     *string          `json:"listing_id"`
	ListingURL    *string          `json:"listing_url"`
	BuyerUsername *string          `json:"buyer_username"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
}

type paymentRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

type shippingRequest struct {
	ShippingStatus string  `json:"shipping_status" validate:"required"`
	TrackingNumber *string `json:"tracking_number"`
}

func shoesUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shoes service unavailable"))
}

// ShoeCreate catalogues a shoe directly, without going through the queue.
func ShoeCreate(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		var input shoes.CreateShoeInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.UserID == 0 {
			input.UserID = middleware.UserIDFromContext(r.Context())
		}
		input.Actor = middleware.ActorFromContext(r.Context())

		shoe, err := svc.CreateShoe(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, shoe)
	}
}

func ShoeList(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUint(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := shoes.ListParams{
			UserID: userID,
			Brand:  strings.TrimSpace(r.URL.Query().Get("brand")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("listing_status")); raw != "" {
			status, err := enums.ParseListingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, validation.Field("listing_status", err.Error()))
				return
			}
			params.ListingStatus = &status
		}

		result, err := svc.ListShoes(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePage(w, result.Items, result.NextCursor)
	}
}

func ShoeGet(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shoe, err := svc.GetShoe(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shoe)
	}
}

// ShoeUpdate patches descriptive attributes. Status fields are rejected as
// unknown; they only move through the transition endpoints.
func ShoeUpdate(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input shoes.UpdateShoeInput
		if err := validators.DecodeJSON(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Actor = middleware.ActorFromContext(r.Context())

		shoe, err := svc.UpdateShoe(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shoe)
	}
}

func ShoeTransitionListing(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req listingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseListingStatus(strings.TrimSpace(req.ListingStatus))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, validation.Field("listing_status", err.Error()))
			return
		}

		shoe, err := svc.TransitionListing(r.Context(), id, target, shoes.ListingContext{
			Actor:         middleware.ActorFromContext(r.Context()),
			ListingID:     req.ListingID,
			ListingURL:    req.ListingURL,
			BuyerUsername: req.BuyerUsername,
			SalePrice:     req.SalePrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shoe)
	}
}

func ShoeTransitionPayment(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParsePaymentStatus(strings.TrimSpace(req.PaymentStatus))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, validation.Field("payment_status", err.Error()))
			return
		}

		shoe, err := svc.TransitionPayment(r.Context(), id, target, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shoe)
	}
}

func ShoeTransitionShipping(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req shippingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseShippingStatus(strings.TrimSpace(req.ShippingStatus))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, validation.Field("shipping_status", err.Error()))
			return
		}

		shoe, err := svc.TransitionShipping(r.Context(), id, target, shoes.ShippingContext{
			Actor:          middleware.ActorFromContext(r.Context()),
			TrackingNumber: req.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shoe)
	}
}

// ShoeTransactions returns the append-only listing history, oldest first.
func ShoeTransactions(svc shoes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			shoesUnavailable(w, r, logg)
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListTransactions(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
