package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func parseIDParam(r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// parsePagination reads page/limit query params with sane bounds.
func parsePagination(r *http.Request, defaultLimit, maxLimit int) (page, limit, offset int) {
	page = 1
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = (page - 1) * limit
	return page, limit, offset
}
