package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/tpower/power"
	"github.com/domino14/tpower/report"
	"github.com/domino14/tpower/stats"
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.options.ToDisplayText()), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		_, val := sc.options.Show(opt)
		return msg(val), nil
	}
	ret, err := sc.options.Set(opt, cmd.args[1])
	if err != nil {
		return nil, err
	}
	if opt == "mu" {
		sc.data.Mu = sc.options.mu
	}
	sc.lastSweep = nil
	return msg("set " + opt + " to " + ret), nil
}

func (sc *ShellController) showData(cmd *shellcmd) (*Response, error) {
	return msg(sc.data.String()), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file>")
	}
	if err := sc.loadData(cmd.args[0]); err != nil {
		return nil, err
	}
	return msg(sc.data.String()), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <file.yaml>")
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := sc.data.Save(f); err != nil {
		return nil, err
	}
	return msg("saved " + sc.data.Name + " to " + cmd.args[0]), nil
}

// estimatorOptions applies per-command overrides such as -convention sample.
func (sc *ShellController) estimatorOptions(cmd *shellcmd) ([]power.Option, error) {
	opts := sc.options.estimatorOptions()
	if c, ok := cmd.options["convention"]; ok {
		conv, err := stats.ParseConvention(c)
		if err != nil {
			return nil, err
		}
		opts = append(opts, power.WithConvention(conv))
	}
	return opts, nil
}

func (sc *ShellController) alpha(cmd *shellcmd) (float64, error) {
	a, ok := cmd.options["alpha"]
	if !ok {
		return sc.options.alpha, nil
	}
	return strconv.ParseFloat(a, 64)
}

func (sc *ShellController) power(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: power <n> [-convention population|sample] [-alpha a]")
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	opts, err := sc.estimatorOptions(cmd)
	if err != nil {
		return nil, err
	}
	alpha, err := sc.alpha(cmd)
	if err != nil {
		return nil, err
	}
	res, err := power.Estimate(sc.data.Observations, n, sc.data.Mu, alpha, opts...)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(language.English)
	var ss strings.Builder
	p.Fprintf(&ss, "size %d of %d, mu %g, alpha %g, %s std dev\n", res.Size, res.N, res.Mu, res.Alpha, res.Convention)
	p.Fprintf(&ss, "critical value: -%.4f\n", res.CriticalValue)
	p.Fprintf(&ss, "rejected %d of %d subsamples (%d constant)\n", res.Rejected, res.Total, res.Degenerate)
	p.Fprintf(&ss, "power: %.4f\n", res.Power)
	return msg(ss.String()), nil
}

func (sc *ShellController) sweep(cmd *shellcmd) (*Response, error) {
	from, to := sc.options.sweepFrom, sc.options.sweepTo
	var err error
	if len(cmd.args) > 0 {
		if from, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	if len(cmd.args) > 1 {
		if to, err = strconv.Atoi(cmd.args[1]); err != nil {
			return nil, err
		}
	}
	if len(cmd.args) > 2 {
		return nil, errors.New("usage: sweep [from] [to]")
	}
	opts, err := sc.estimatorOptions(cmd)
	if err != nil {
		return nil, err
	}
	alpha, err := sc.alpha(cmd)
	if err != nil {
		return nil, err
	}
	points, err := power.Sweep(context.Background(), sc.data.Observations,
		power.SizeRange(from, to), sc.data.Mu, alpha, opts...)
	if err != nil {
		return nil, err
	}
	sc.lastSweep = points
	return msg(report.SweepTable(points) + "\n" + report.PowerCurve(points, sc.options.width)), nil
}

func (sc *ShellController) hist(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: hist <n> [-bins b]")
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	bins := sc.options.bins
	if b, ok := cmd.options["bins"]; ok {
		if bins, err = strconv.Atoi(b); err != nil {
			return nil, err
		}
	}
	opts, err := sc.estimatorOptions(cmd)
	if err != nil {
		return nil, err
	}
	alpha, err := sc.alpha(cmd)
	if err != nil {
		return nil, err
	}
	res, err := power.Estimate(sc.data.Observations, n, sc.data.Mu, alpha, opts...)
	if err != nil {
		return nil, err
	}
	ts, err := power.TStatistics(sc.data.Observations, n, sc.data.Mu, opts...)
	if err != nil {
		return nil, err
	}
	var ss strings.Builder
	if err := report.THistogram(&ss, ts, bins, sc.options.width, res.CriticalValue); err != nil {
		return nil, err
	}
	fmt.Fprintf(&ss, "large-sample limit of the critical value: %.4f\n", stats.ZVal(100*(1-2*alpha)))
	return msg(ss.String()), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: export <file> [-format yaml|json]")
	}
	if sc.lastSweep == nil {
		return nil, errors.New("nothing to export; run sweep first")
	}
	f, err := os.Create(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := report.Export(f, sc.lastSweep, cmd.options["format"]); err != nil {
		return nil, err
	}
	return msg("exported " + strconv.Itoa(len(sc.lastSweep)) + " points to " + cmd.args[0]), nil
}
