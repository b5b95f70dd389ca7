package validators

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
	"github.com/angelmondragon/kickstock-backend/pkg/validation"
)

// DecodeJSONBody decodes a single JSON object into dest and runs its
// validate tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	if err := DecodeJSON(r, dest); err != nil {
		return err
	}
	return validation.Struct(dest)
}

// DecodeOptionalJSONBody is DecodeJSONBody for endpoints whose body may be
// omitted entirely.
func DecodeOptionalJSONBody(r *http.Request, dest any) error {
	if err := DecodeOptionalJSON(r, dest); err != nil {
		return err
	}
	return validation.Struct(dest)
}

// DecodeOptionalJSON decodes dest when a body was sent and leaves it
// untouched otherwise. Validation is left to the caller.
func DecodeOptionalJSON(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	empty, err := decode(r, dest)
	if empty {
		return nil
	}
	return err
}

// DecodeJSON decodes exactly one JSON object into dest, rejecting unknown
// fields. It does not run validate tags.
func DecodeJSON(r *http.Request, dest any) error {
	empty, err := decode(r, dest)
	if empty {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	return err
}

func decode(r *http.Request, dest any) (bool, error) {
	if r.Body == nil {
		return true, nil
	}
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	if decoder.More() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}
	return false, nil
}
