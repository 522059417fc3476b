package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/domino14/tpower/config"
	"github.com/domino14/tpower/power"
	"github.com/domino14/tpower/stats"
)

// ShellOptions are the settings a session can change with `set`.
type ShellOptions struct {
	mu              float64
	alpha           float64
	convention      stats.StdDevConvention
	maxCombinations int
	workers         int
	sweepFrom       int
	sweepTo         int
	bins            int
	width           int
}

func optionsFromConfig(cfg *config.Config) (*ShellOptions, error) {
	conv, err := stats.ParseConvention(cfg.GetString(config.ConfigConvention))
	if err != nil {
		return nil, err
	}
	return &ShellOptions{
		mu:              cfg.GetFloat64(config.ConfigMu),
		alpha:           cfg.GetFloat64(config.ConfigAlpha),
		convention:      conv,
		maxCombinations: cfg.GetInt(config.ConfigMaxCombinations),
		workers:         cfg.GetInt(config.ConfigWorkers),
		sweepFrom:       cfg.GetInt(config.ConfigSweepFrom),
		sweepTo:         cfg.GetInt(config.ConfigSweepTo),
		bins:            cfg.GetInt(config.ConfigHistogramBins),
		width:           cfg.GetInt(config.ConfigPlotWidth),
	}, nil
}

func (so *ShellOptions) estimatorOptions() []power.Option {
	return []power.Option{
		power.WithConvention(so.convention),
		power.WithMaxCombinations(so.maxCombinations),
		power.WithWorkers(so.workers),
	}
}

func (so *ShellOptions) values() map[string]string {
	return map[string]string{
		"mu":               strconv.FormatFloat(so.mu, 'g', -1, 64),
		"alpha":            strconv.FormatFloat(so.alpha, 'g', -1, 64),
		"convention":       so.convention.String(),
		"max-combinations": strconv.Itoa(so.maxCombinations),
		"workers":          strconv.Itoa(so.workers),
		"sweep-from":       strconv.Itoa(so.sweepFrom),
		"sweep-to":         strconv.Itoa(so.sweepTo),
		"bins":             strconv.Itoa(so.bins),
		"width":            strconv.Itoa(so.width),
	}
}

func (so *ShellOptions) Show(key string) (bool, string) {
	v, ok := so.values()[key]
	if !ok {
		return false, "No such option: " + key
	}
	return true, v
}

func (so *ShellOptions) ToDisplayText() string {
	vals := so.values()
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var ss strings.Builder
	ss.WriteString("Settings:\n")
	for _, k := range keys {
		fmt.Fprintf(&ss, "  %-18s%s\n", k, vals[k])
	}
	return ss.String()
}

// Set changes one option and returns its new display value.
func (so *ShellOptions) Set(key, value string) (string, error) {
	var err error
	switch key {
	case "mu":
		var mu float64
		if mu, err = strconv.ParseFloat(value, 64); err == nil {
			so.mu = mu
		}
	case "alpha":
		var a float64
		if a, err = strconv.ParseFloat(value, 64); err == nil {
			if !(a > 0 && a < 1) {
				return "", errors.New("alpha must be between 0 and 1")
			}
			so.alpha = a
		}
	case "convention":
		var c stats.StdDevConvention
		if c, err = stats.ParseConvention(value); err == nil {
			so.convention = c
		}
	case "max-combinations", "workers", "sweep-from", "sweep-to", "bins", "width":
		var i int
		if i, err = strconv.Atoi(value); err == nil {
			so.setInt(key, i)
		}
	default:
		return "", errors.New("option " + key + " not recognized")
	}
	if err != nil {
		return "", err
	}
	_, v := so.Show(key)
	return v, nil
}

func (so *ShellOptions) setInt(key string, i int) {
	switch key {
	case "max-combinations":
		so.maxCombinations = i
	case "workers":
		so.workers = i
	case "sweep-from":
		so.sweepFrom = i
	case "sweep-to":
		so.sweepTo = i
	case "bins":
		so.bins = i
	case "width":
		so.width = i
	}
}
