package quilt

import (
	"github.com/dacapoday/quilt/coverage"
	"github.com/dacapoday/quilt/mem"
)

// Sentinel errors of the quilt packages, aliased here for callers that only
// import the root package.
var (
	ErrInvalidRange     = coverage.ErrInvalidRange
	ErrCapacityOverflow = mem.ErrCapacityOverflow
)
