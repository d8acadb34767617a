// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 500

// ParseLimit reads the "limit" query parameter. Missing or invalid values
// yield PageSize; values above MaxPageSize are clamped.
func ParseLimit(r *http.Request) int64 {
	s := query.Get(r, "limit")
	if s == "" {
		return PageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return int64(n)
}
