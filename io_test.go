package limitsurface

import (
	"math"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const steepModelFile = `4.000000,
2,
0.7,0,2,
0.3,0.5,4,
2,
0.8,0,1.5,
0.2,0,3,
`

func writeModel(t *testing.T, dir string, k float64, body string) string {
	fname := ModelFileName(dir, k)
	require.NoError(t, os.WriteFile(fname, []byte(body), 0644))
	return fname
}

func TestModelFileName(t *testing.T) {
	assert.Equal(t, "models/4_00.txt", ModelFileName("models", 4))
	assert.Equal(t, "models/0_50.txt", ModelFileName("models/", 0.5))
	assert.Equal(t, "models/12_25.txt", ModelFileName("models", 12.25))
	assert.Equal(t, "models/inf.txt", ModelFileName("models", math.Inf(+1)))
}

func TestParseModel(t *testing.T) {
	m, err := ParseModel(strings.NewReader(steepModelFile), 4)
	require.NoError(t, err)
	want := steepModel(t)

	assert.Equal(t, 4.0, m.K)
	assert.Equal(t, want.Ft, m.Ft)
	assert.Equal(t, want.Taun, m.Taun)
	assert.Equal(t, []float64{2.25, 9}, m.Taun.SigmaSquare)
}

func TestParseModelSeparators(t *testing.T) {
	// Whitespace, missing trailing commas and extra trailing values are all
	// accepted.
	body := "4 1 1 0 1\n1,\t1, 0, 1  99 98"
	m, err := ParseModel(strings.NewReader(body), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Ft.Len())
	assert.Equal(t, 1, m.Taun.Len())
	assert.Equal(t, unitModel(t).Taun, m.Taun)
}

func TestParseModelInfiniteK(t *testing.T) {
	m, err := ParseModel(strings.NewReader("inf, 0, 0,"), math.Inf(+1))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Ft.Len())
	assert.Equal(t, 0, m.Taun.Len())
}

func TestParseModelErrors(t *testing.T) {
	tests := []struct {
		name, body string
		k          float64
		cause      error
	}{
		{"mismatched k", steepModelFile, 3, ErrConfigurationMismatch},
		{"empty", "", 4, ErrMalformedModel},
		{"no Gaussians", "4, 1, 1, 0, 1,", 4, ErrMalformedModel},
		{"truncated triple", "4, 1, 1, 0,", 4, ErrMalformedModel},
		{"fractional count", "4, 1.5, 1, 0, 1, 0,", 4, ErrMalformedModel},
		{"negative count", "4, -1, 0,", 4, ErrMalformedModel},
		{"huge count", "4, 1e300, 0,", 4, ErrMalformedModel},
		{"not a number", "4, 1, 1, zero, 1, 0,", 4, ErrMalformedModel},
		{"zero deviation", "4, 0, 1, 1, 0, 0,", 4, ErrMalformedModel},
	}

	for _, test := range tests {
		_, err := ParseModel(strings.NewReader(test.body), test.k)
		require.Error(t, err, test.name)
		assert.Equal(t, test.cause, errors.Cause(err), test.name)
	}
}

func TestLoadModel(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, 4, steepModelFile)

	m, err := LoadModel(dir, 4)
	require.NoError(t, err)
	assert.Equal(t, steepModel(t).Ft, m.Ft)

	// The file for k = 4 exists, but claims a different k under another name.
	fname := path.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(fname, []byte(steepModelFile), 0644))
	_, err = ReadModel(fname, 5)
	assert.Equal(t, ErrConfigurationMismatch, errors.Cause(err))
	assert.Contains(t, err.Error(), "other.txt")
}

func TestLoadModelMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(dir, 2)
	require.Error(t, err)
	assert.Equal(t, ErrMissingResource, errors.Cause(err))

	// A directory can be opened but not read.
	_, err = ReadModel(dir, 2)
	require.Error(t, err)
	assert.Equal(t, ErrMissingResource, errors.Cause(err))
}
