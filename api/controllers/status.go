package controllers

import (
	"net/http"

	"github.com/angelmondragon/kickstock-backend/api/responses"
)

// APIStatus is the unauthenticated liveness message operators poll.
func APIStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"message": "system is fully operational"})
	}
}
