package controllers

import (
	"net/http"

	"github.com/angelmondragon/kickstock-backend/api/middleware"
	"github.com/angelmondragon/kickstock-backend/api/responses"
	"github.com/angelmondragon/kickstock-backend/api/validators"
	"github.com/angelmondragon/kickstock-backend/internal/audit"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
)

func AuditTrail(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Trail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// AuditRecord appends a free-form operator note to a shoe's trail. The actor
// defaults to the authenticated caller.
func AuditRecord(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		id, err := validators.URLParamID(r, "shoeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input audit.RecordInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.ShoeID = id
		if input.Actor == "" {
			input.Actor = middleware.ActorFromContext(r.Context())
		}

		entry, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
