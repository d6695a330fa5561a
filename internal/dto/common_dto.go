package dto

// ListResponse is the envelope of every paginated listing.
type ListResponse[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// IDsRequest carries a list of ids for bulk operations.
type IDsRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// MotivoRequest is the body of void operations.
type MotivoRequest struct {
	Motivo string `json:"motivo" validate:"omitempty,max=300"`
}

// Pagination normalizes page/limit from a query string.
func Pagination(page, limit, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
