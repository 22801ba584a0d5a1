package limitsurface

import (
	"io"
	"math"
	"os"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

const (
	// ModelFileDigits is the number of decimal digits of k used in model
	// file names.
	ModelFileDigits = 2
	// ModelFileExt is the extension of model files.
	ModelFileExt = ".txt"
)

var (
	// ErrConfigurationMismatch is returned when a model was fit for a
	// different value of k than the one requested.
	ErrConfigurationMismatch = errors.New("limit-surface model does not match the requested k")
	// ErrMissingResource is returned when a model file cannot be opened.
	ErrMissingResource = errors.New("limit-surface model file is missing or unreadable")
	// ErrMalformedModel is returned when a model file cannot be parsed.
	ErrMalformedModel = errors.New("limit-surface model file is malformed")
)

// ModelFileName returns the name of the model file for k inside dir. For
// k = 4 this is dir/4_00.txt.
func ModelFileName(dir string, k float64) string {
	var kStr string
	if math.IsInf(k, 0) {
		kStr = "inf"
	} else {
		kStr = strconv.FormatFloat(k, 'f', ModelFileDigits, 64)
	}
	kStr = strings.Replace(kStr, ".", "_", -1)
	return path.Join(dir, kStr+ModelFileExt)
}

// LoadModel reads the model for k from the directory dir.
func LoadModel(dir string, k float64) (*Model, error) {
	return ReadModel(ModelFileName(dir, k), k)
}

// ReadModel reads the model stored in fname and checks that it was fit for k.
func ReadModel(fname string, k float64) (*Model, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrapf(ErrMissingResource, "%s", err.Error())
	}
	defer f.Close()

	m, err := ParseModel(f, k)
	if err != nil {
		return nil, errors.Wrapf(err, "reading '%s'", fname)
	}
	return m, nil
}

// ParseModel parses a model file. The file is a flat list of numbers
// separated by commas and/or whitespace:
//
//	k, n_sigm, (gain, mean, exponent) * n_sigm,
//	n_gauss, (gain, mean, stddev) * n_gauss
//
// Anything after the last Gaussian term is ignored.
func ParseModel(r io.Reader, k float64) (*Model, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(ErrMissingResource, "%s", err.Error())
	}

	tok := &tokens{fields: strings.FieldsFunc(string(text), isSeparator)}

	fileK, err := tok.next("k")
	if err != nil {
		return nil, err
	}
	if fileK != k {
		return nil, errors.Wrapf(
			ErrConfigurationMismatch, "file has k = %g, but k = %g was requested",
			fileK, k,
		)
	}

	gains, means, exps, err := tok.triples("sigmoid")
	if err != nil {
		return nil, err
	}
	ft, err := NewSigmoidBasis(gains, means, exps)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedModel, err.Error())
	}

	gains, means, sigmas, err := tok.triples("Gaussian")
	if err != nil {
		return nil, err
	}
	taun, err := NewGaussianBasis(gains, means, sigmas)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedModel, err.Error())
	}

	return &Model{K: k, Ft: ft, Taun: taun}, nil
}

func isSeparator(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// tokens walks through the numeric fields of a model file.
type tokens struct {
	fields []string
	i      int
}

func (tok *tokens) next(name string) (float64, error) {
	if tok.i >= len(tok.fields) {
		return 0, errors.Wrapf(
			ErrMalformedModel, "file ended before %s (token %d)", name, tok.i,
		)
	}

	x, err := strconv.ParseFloat(tok.fields[tok.i], 64)
	if err != nil {
		return 0, errors.Wrapf(
			ErrMalformedModel, "token %d (%s) is '%s', not a number",
			tok.i, name, tok.fields[tok.i],
		)
	}
	tok.i++
	return x, nil
}

func (tok *tokens) count(name string) (int, error) {
	x, err := tok.next(name + " term count")
	if err != nil {
		return 0, err
	}
	if x < 0 || x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, errors.Wrapf(
			ErrMalformedModel, "%s term count must be a non-negative integer, "+
				"but is %g", name, x,
		)
	} else if x > float64(len(tok.fields)) {
		return 0, errors.Wrapf(
			ErrMalformedModel, "%s term count, %g, is larger than the file",
			name, x,
		)
	}
	return int(x), nil
}

// triples reads a term count followed by that many triples.
func (tok *tokens) triples(name string) (a, b, c []float64, err error) {
	n, err := tok.count(name)
	if err != nil {
		return nil, nil, nil, err
	}
	if remaining := len(tok.fields) - tok.i; 3*n > remaining {
		return nil, nil, nil, errors.Wrapf(
			ErrMalformedModel, "%d %s terms need %d values, but only %d remain",
			n, name, 3*n, remaining,
		)
	}

	a, b, c = make([]float64, n), make([]float64, n), make([]float64, n)
	for j := 0; j < n; j++ {
		if a[j], err = tok.next(name + " gain"); err != nil {
			return nil, nil, nil, err
		}
		if b[j], err = tok.next(name + " mean"); err != nil {
			return nil, nil, nil, err
		}
		if c[j], err = tok.next(name + " width"); err != nil {
			return nil, nil, nil, err
		}
	}
	return a, b, c, nil
}
