// Package report renders cost-history plots and the human-readable
// summaries printed after training.
package report

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot size used for every saved figure.
var (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 5 * vg.Inch
)

func historyXYs(history []float64) plotter.XYs {
	pts := make(plotter.XYs, len(history))
	for i, c := range history {
		pts[i].X = float64(i + 1)
		pts[i].Y = c
	}
	return pts
}

func newCostPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "cost J(θ)"
	p.Add(plotter.NewGrid())
	return p
}

// PlotCostHistory saves a cost-versus-iteration line plot to path. The
// image format follows the file extension (png, svg, pdf, ...).
func PlotCostHistory(history []float64, title, path string) error {
	if len(history) == 0 {
		return errors.NewModelError("report.PlotCostHistory", "empty data", errors.ErrEmptyData)
	}
	p := newCostPlot(title)
	line, err := plotter.NewLine(historyXYs(history))
	if err != nil {
		return errors.Wrap(err, "cost line")
	}
	p.Add(line)
	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// PlotCostHistories draws one line per class, labeled "class k".
func PlotCostHistories(histories [][]float64, title, path string) error {
	if len(histories) == 0 {
		return errors.NewModelError("report.PlotCostHistories", "empty data", errors.ErrEmptyData)
	}
	p := newCostPlot(title)
	lines := make([]interface{}, 0, 2*len(histories))
	for k, h := range histories {
		if len(h) == 0 {
			return errors.NewValueError("report.PlotCostHistories", fmt.Sprintf("class %d has no history", k))
		}
		lines = append(lines, fmt.Sprintf("class %d", k), historyXYs(h))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return errors.Wrap(err, "cost lines")
	}
	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// TokenWeight pairs a vocabulary term with its learned weight.
type TokenWeight struct {
	Token  string
	Weight float64
}

// TopWeights returns the n vocabulary terms with the largest weights.
// theta holds the bias at index 0 followed by one weight per term.
// Equal weights are ordered by token.
func TopWeights(theta mat.Vector, vocabulary []string, n int) ([]TokenWeight, error) {
	if theta == nil {
		return nil, errors.NewValueError("report.TopWeights", "theta must not be nil")
	}
	if theta.Len() != len(vocabulary)+1 {
		return nil, errors.NewDimensionError("report.TopWeights", len(vocabulary)+1, theta.Len(), 0)
	}
	out := make([]TokenWeight, len(vocabulary))
	for i, tok := range vocabulary {
		out[i] = TokenWeight{Token: tok, Weight: theta.AtVec(i + 1)}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Token < out[j].Token
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out, nil
}
