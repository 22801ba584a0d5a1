package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipcontrol/limitsurface/cor"
)

func TestReadMeasurements(t *testing.T) {
	fname := writeFile(t, t.TempDir(), "data.txt", "0.0 1.5 0.002\n0.1 2.5 0.004\n0.2 3.5 0.001\n")

	ft, taun, err := ReadMeasurements(fname, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, ft)
	assert.Equal(t, []float64{0.002, 0.004, 0.001}, taun)

	_, _, err = ReadMeasurements(fname, -1, 2)
	assert.Error(t, err)
}

func TestReadCORTable(t *testing.T) {
	fname := writeFile(t, t.TempDir(), "cor.txt", "2 0.04\n0 0.01\n1 0.02\n")

	tab, err := ReadCORTable(fname, 0, 1, cor.Linear)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2}, tab.Ratio)
	assert.InDelta(t, 0.015, tab.Radius([]float64{0.5}), 1e-15)

	_, err = ReadCORTable(fname, 0, 1, cor.EndMethod)
	assert.Error(t, err)
}
