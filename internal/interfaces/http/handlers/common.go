// Package handlers contains the HTTP handlers for the opinionspace API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/civitas-ai/opinionspace/pkg/errors"
	"github.com/civitas-ai/opinionspace/pkg/types/common"
)

// parsePagination reads page / page_size query parameters with defaults.
func parsePagination(r *http.Request) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			p.PageSize = n
		}
	}
	return p
}

// parseBoolParam reads a boolean query parameter, defaulting to false on
// absence or garbage.
func parseBoolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// writeJSON writes a JSON body with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeSuccess wraps data in the standard response envelope.
func writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, common.NewSuccessResponse(data))
}

// writeAppError maps an application error to its HTTP status and writes the
// error envelope.  Internal errors are masked.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, common.NewErrorResponse(code.String(), message))
}
