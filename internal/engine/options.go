package engine

import (
	"math"

	"github.com/roach88/eclat/internal/matrix"
	"github.com/roach88/eclat/internal/tidset"
)

// DefaultMinSupport is the default minimum support ratio.
const DefaultMinSupport = 0.01

// supportEpsilon absorbs float error in ratio × count, so 0.4 × 5 yields 2.
const supportEpsilon = 1e-9

// Options configures a mining run.
type Options struct {
	// MinSupport is the minimum support ratio, in (0, 1].
	MinSupport float64

	// UseMatrix enables co-occurrence matrix pruning of root classes.
	UseMatrix bool

	// MatrixKind selects the matrix representation when UseMatrix is set.
	MatrixKind matrix.Kind

	// TidsetKind selects the tidset representation.
	TidsetKind tidset.Kind

	// Workers is the number of root equivalence classes mined concurrently.
	// Zero or one mines sequentially in emission order.
	Workers int
}

// DefaultOptions returns ratio 0.01 with matrix pruning on, automatic
// representation choice, and sequential mining.
func DefaultOptions() Options {
	return Options{
		MinSupport: DefaultMinSupport,
		UseMatrix:  true,
		MatrixKind: matrix.KindAuto,
		TidsetKind: tidset.KindAuto,
		Workers:    1,
	}
}

// Validate rejects options that cannot start a run.
func (o Options) Validate() error {
	if math.IsNaN(o.MinSupport) || o.MinSupport <= 0 || o.MinSupport > 1 {
		return newConfigError(ErrCodeInvalidMinSupport, "min_support",
			"minimum support ratio must be in (0, 1], got %v", o.MinSupport)
	}
	if o.Workers < 0 {
		return newConfigError(ErrCodeInvalidWorkers, "workers",
			"worker count must not be negative, got %d", o.Workers)
	}
	if _, err := matrix.ParseKind(string(o.MatrixKind)); err != nil {
		return newConfigError(ErrCodeInvalidKind, "matrix_kind", "%v", err)
	}
	if _, err := tidset.ParseKind(string(o.TidsetKind)); err != nil {
		return newConfigError(ErrCodeInvalidKind, "tidset_kind", "%v", err)
	}
	return nil
}

// MinSupportAbsolute converts a ratio to a transaction count:
// ceil(ratio × transactions), and at least 1 for a non-empty database.
func MinSupportAbsolute(ratio float64, transactions int) int {
	if transactions <= 0 {
		return 0
	}
	n := int(math.Ceil(ratio*float64(transactions) - supportEpsilon))
	if n < 1 {
		return 1
	}
	return n
}
