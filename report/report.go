// Package report renders sweep results for people: tables, a text power
// curve, histograms of t statistics, and machine-readable exports. Nothing
// in here feeds back into the estimator.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tpower/power"
)

var ErrUnknownFormat = errors.New("unknown export format")

// SweepTable lists every point of a sweep, one row per size.
func SweepTable(points []power.SweepPoint) string {
	var ss strings.Builder
	if len(points) == 0 {
		return ""
	}
	fmt.Fprintf(&ss, "%-6s%-10s%-14s%-10s%-12s%-10s\n", "Size", "Critical", "Combinations", "Rejected", "Degenerate", "Power")
	for _, p := range points {
		r := p.Result
		fmt.Fprintf(&ss, "%-6d%-10.4f%-14d%-10d%-12d%-10.4f\n", p.Size, r.CriticalValue,
			r.Total, r.Rejected, r.Degenerate, p.Power)
	}
	best := lo.MaxBy(points, func(a, b power.SweepPoint) bool {
		return a.Power > b.Power
	})
	fmt.Fprintf(&ss, "Highest power: %.2f%% at size %d\n", best.Power*100, best.Size)
	return ss.String()
}

// PowerCurve draws power against sample size, sizes down the left and
// power along a 0..1 axis of the given width.
func PowerCurve(points []power.SweepPoint, width int) string {
	if len(points) == 0 {
		return ""
	}
	if width < 10 {
		width = 10
	}
	var ss strings.Builder
	fmt.Fprintf(&ss, "%4s |%s| power\n", "n", strings.Repeat("-", width))
	for _, p := range points {
		col := int(math.Round(p.Power * float64(width-1)))
		row := []byte(strings.Repeat(" ", width))
		for i := 0; i < col; i++ {
			row[i] = '.'
		}
		row[col] = '*'
		fmt.Fprintf(&ss, "%4d |%s| %.4f\n", p.Size, row, p.Power)
	}
	fmt.Fprintf(&ss, "%4s 0%s1\n", "", strings.Repeat(" ", width))
	return ss.String()
}

// THistogram writes a histogram of t statistics. The critical value is
// printed underneath for reference.
func THistogram(w io.Writer, tstats []float64, bins, width int, critical float64) error {
	if len(tstats) == 0 {
		_, err := io.WriteString(w, "no finite t statistics (every subsample is constant)\n")
		return err
	}
	if bins < 1 {
		bins = 10
	}
	hist := histogram.Hist(bins, tstats)
	if err := histogram.Fprint(w, hist, histogram.Linear(width)); err != nil {
		return err
	}
	below := lo.CountBy(tstats, func(t float64) bool { return t <= -critical })
	_, err := fmt.Fprintf(w, "t statistics: %d, at or below -%.4f: %d\n", len(tstats), critical, below)
	return err
}

// Export writes the sweep as "yaml" or "json".
func Export(w io.Writer, points []power.SweepPoint, format string) error {
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(points); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(points)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
