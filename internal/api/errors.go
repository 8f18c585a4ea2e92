package api

import (
	"errors"
	"net/http"

	"github.com/jotlog/jotlog/internal/api/respond"
	"github.com/jotlog/jotlog/internal/model"
)

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, model.ErrPathTraversal):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	respond.WriteError(w, statusFor(err), err.Error())
}
