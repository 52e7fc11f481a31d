package query

import (
	"fmt"

	"github.com/instatodoist/instant-todos-server/internal/domain"
)

// DefaultPageSize applies when the caller supplies no page size.
const DefaultPageSize = 50

// Page is a resolved skip/limit window.
type Page struct {
	Skip  int64
	Limit int64
}

// NewPage converts a page size and a 1-based page number into a skip/limit
// pair. Page k skips (k-1)*first records, so page 1 never skips.
func NewPage(first, offset int) (Page, error) {
	if first <= 0 {
		return Page{}, fmt.Errorf("%w: first must be positive, got %d", domain.ErrInvalidArgument, first)
	}

	if offset <= 0 {
		return Page{}, fmt.Errorf("%w: offset must be positive, got %d", domain.ErrInvalidArgument, offset)
	}

	return Page{
		Skip:  int64(offset-1) * int64(first),
		Limit: int64(first),
	}, nil
}
