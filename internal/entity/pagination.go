package entity

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

type PaginationInput struct {
	Limit  int
	Offset int
}

// NewPaginationInput clamps limit into [1, MaxLimit] and offset to >= 0.
func NewPaginationInput(limit int, offset int) *PaginationInput {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return &PaginationInput{
		Limit:  limit,
		Offset: offset,
	}
}
