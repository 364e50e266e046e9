package controllers

import (
	"net/http"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/delivery/http/middleware"
)

// requireUser returns the authenticated user ID, writing a 401 when there is none.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return userID, ok
}

// DeleteResponse is the response body for endpoints that delete a resource.
type DeleteResponse struct {
	Status string `json:"status"`
}

// DeleteSuccessResponse is the success envelope for delete endpoints (200).
type DeleteSuccessResponse struct {
	Data  DeleteResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

var deleted = DeleteResponse{Status: "deleted"}
