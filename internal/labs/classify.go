// Package labs holds lab reference ranges and derives lab-value trends.
package labs

import (
	"errors"
	"fmt"

	"github.com/mesikahq/spitalverse/internal/record"
)

var ErrInvalidRange = errors.New("reference range min is greater than max")

// NewRange builds a reference range, rejecting min > max.
func NewRange(min, max float64) (record.Range, error) {
	if min > max {
		return record.Range{}, fmt.Errorf("%w: %v > %v", ErrInvalidRange, min, max)
	}
	return record.Range{Min: min, Max: max}, nil
}

func mustRange(min, max float64) record.Range {
	r, err := NewRange(min, max)
	if err != nil {
		panic(err)
	}
	return r
}

// Classify places value relative to the closed interval r.
func Classify(value float64, r record.Range) record.Trend {
	switch {
	case value < r.Min:
		return record.TrendDown
	case value > r.Max:
		return record.TrendUp
	default:
		return record.TrendNormal
	}
}
