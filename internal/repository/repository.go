package repository

import "errors"

// ErrNotFound is returned by memory repos when a record does not exist.
// Callers treat it the way SQL repos treat sql.ErrNoRows.
var ErrNotFound = errors.New("record not found")

// paginate slices a filtered result set. page/size <= 0 fall back to defaults.
func paginate[T any](all []T, page, size int) ([]T, int) {
	total := len(all)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 100
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return all[start:end], total
}
