// Package datasets loads the delimited numeric, SMS and synthetic datasets
// used by the command line tool.
package datasets

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// SMS labels.
const (
	Ham  = 0
	Spam = 1
)

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

func parseRow(fields []string) ([]float64, error) {
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// isHeader reports whether none of fields parses as a number.
func isHeader(fields []string) bool {
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 64); err == nil {
			return false
		}
	}
	return true
}

// LoadDelimited reads numeric rows separated by commas, semicolons or
// whitespace. The last column is the label, the others are features.
// Blank lines and lines starting with '#' are skipped. A first content line
// in which no field parses as a number is treated as a header; a partly
// numeric first line is a malformed row and is rejected.
func LoadDelimited(r io.Reader) (*mat.Dense, *mat.VecDense, error) {
	const op = "datasets.LoadDelimited"

	var data, labels []float64
	cols := 0
	seenContent := false
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		first := !seenContent
		seenContent = true

		fields := splitFields(line)
		row, err := parseRow(fields)
		if err != nil {
			if first && isHeader(fields) {
				continue
			}
			return nil, nil, errors.NewValueError(op, fmt.Sprintf("line %d: %v", lineNo, err))
		}
		if len(row) < 2 {
			return nil, nil, errors.NewValueError(op, fmt.Sprintf("line %d: need at least one feature and a label", lineNo))
		}
		if cols == 0 {
			cols = len(row)
		} else if len(row) != cols {
			return nil, nil, errors.NewDimensionError(fmt.Sprintf("%s line %d", op, lineNo), cols, len(row), 1)
		}
		data = append(data, row[:cols-1]...)
		labels = append(labels, row[cols-1])
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, op)
	}
	if len(labels) == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}

	log.GetLoggerWithName("datasets").Debug("dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.SamplesKey, len(labels),
		log.FeaturesKey, cols-1,
	)
	return mat.NewDense(len(labels), cols-1, data), mat.NewVecDense(len(labels), labels), nil
}

// LoadSMS reads "ham<TAB>text" / "spam<TAB>text" lines. Labels are matched
// case-insensitively; spam maps to Spam and ham to Ham.
func LoadSMS(r io.Reader) ([]string, *mat.VecDense, error) {
	const op = "datasets.LoadSMS"

	var docs []string
	var labels []float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, text, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, nil, errors.NewValueError(op, fmt.Sprintf("line %d: missing tab separator", lineNo))
		}
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "spam":
			labels = append(labels, Spam)
		case "ham":
			labels = append(labels, Ham)
		default:
			return nil, nil, errors.NewValueError(op, fmt.Sprintf("line %d: unknown label %q", lineNo, label))
		}
		docs = append(docs, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.Wrap(err, op)
	}
	if len(docs) == 0 {
		return nil, nil, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}

	log.GetLoggerWithName("datasets").Debug("sms corpus loaded",
		log.OperationKey, log.OperationLoad,
		log.SamplesKey, len(docs),
	)
	return docs, mat.NewVecDense(len(labels), labels), nil
}

// MakeBlobs draws perCenter points from an isotropic Gaussian around each
// center. Rows are grouped by center and labeled with the center's index.
func MakeBlobs(centers [][]float64, perCenter int, stddev float64, seed int64) (*mat.Dense, *mat.VecDense, error) {
	if len(centers) == 0 {
		return nil, nil, errors.NewValidationError("centers", "must not be empty", len(centers))
	}
	if perCenter <= 0 {
		return nil, nil, errors.NewValidationError("per_center", "must be positive", perCenter)
	}
	if stddev < 0 {
		return nil, nil, errors.NewValidationError("stddev", "must not be negative", stddev)
	}
	dim := len(centers[0])
	if dim == 0 {
		return nil, nil, errors.NewValidationError("centers", "must have at least one coordinate", dim)
	}
	for i, c := range centers {
		if len(c) != dim {
			return nil, nil, errors.NewDimensionError(fmt.Sprintf("MakeBlobs center %d", i), dim, len(c), 1)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	m := len(centers) * perCenter
	X := mat.NewDense(m, dim, nil)
	y := mat.NewVecDense(m, nil)
	i := 0
	for k, c := range centers {
		for p := 0; p < perCenter; p++ {
			row := X.RawRowView(i)
			for j := range row {
				row[j] = c[j] + stddev*rng.NormFloat64()
			}
			y.SetVec(i, float64(k))
			i++
		}
	}
	return X, y, nil
}

// LoadDelimitedFile opens path and calls LoadDelimited.
func LoadDelimitedFile(path string) (*mat.Dense, *mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return LoadDelimited(f)
}

// LoadSMSFile opens path and calls LoadSMS.
func LoadSMSFile(path string) ([]string, *mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return LoadSMS(f)
}
