package mem

import (
	"errors"

	"github.com/dacapoday/quilt/coverage"
)

// ErrCapacityOverflow reports an offset/length combination that exceeds the
// addressable size of the store.
var ErrCapacityOverflow = errors.New("capacity overflow")

// ErrInvalidRange is coverage.ErrInvalidRange; the store reports it for
// writes that describe a malformed range, such as a negative offset.
var ErrInvalidRange = coverage.ErrInvalidRange
