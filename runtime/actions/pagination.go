package actions

import (
	"math"

	"github.com/teamkeel/dataservice/runtime/common"
)

// unbounded is the top value used when the caller does not limit the page size.
const unbounded = math.MaxInt

// normalisePaging defaults skip to zero and top to unbounded.
func normalisePaging(skip *int, top *int) (int, int, error) {
	s, t := 0, unbounded

	if skip != nil {
		if *skip < 0 {
			return 0, 0, common.NewInvalidArgumentError("skip cannot be negative, got %d", *skip)
		}
		s = *skip
	}

	if top != nil {
		if *top < 0 {
			return 0, 0, common.NewInvalidArgumentError("top cannot be negative, got %d", *top)
		}
		t = *top
	}

	return s, t, nil
}
