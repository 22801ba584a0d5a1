package io

import (
	"fmt"

	"github.com/phil-mansfield/table"

	"github.com/slipcontrol/limitsurface/cor"
)

// ReadMeasurements reads the tangential force and torque columns from a
// whitespace-separated table.
func ReadMeasurements(fname string, ftCol, taunCol int) (ft, taun []float64, err error) {
	return readColumnPair(fname, ftCol, taunCol)
}

// ReadCORTable reads a table of contact ratios and centre-of-rotation radii
// and fits an interpolating cor.Table to it.
func ReadCORTable(
	fname string, ratioCol, radiusCol int, method cor.Method,
) (*cor.Table, error) {
	ratio, radius, err := readColumnPair(fname, ratioCol, radiusCol)
	if err != nil {
		return nil, err
	}

	t, err := cor.NewTable(ratio, radius, method)
	if err != nil {
		return nil, fmt.Errorf("Could not use COR table '%s': %s", fname, err)
	}
	return t, nil
}

func readColumnPair(fname string, col0, col1 int) (xs, ys []float64, err error) {
	if col0 < 0 || col1 < 0 {
		return nil, nil, fmt.Errorf(
			"Column indices must be non-negative, but are %d and %d.",
			col0, col1,
		)
	}

	cols, err := table.ReadTable(fname, []int{col0, col1}, nil)
	if err != nil {
		return nil, nil, err
	}
	return cols[0], cols[1], nil
}
