package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tpower/dataset"
	"github.com/domino14/tpower/power"
	"github.com/domino14/tpower/stats"
)

func sweep(t *testing.T) []power.SweepPoint {
	d := dataset.Reference()
	points, err := power.Sweep(context.Background(), d.Observations, power.SizeRange(2, 4), d.Mu, power.DefaultAlpha)
	if err != nil {
		t.Fatal(err)
	}
	return points
}

func TestSweepTable(t *testing.T) {
	is := is.New(t)
	out := SweepTable(sweep(t))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	is.Equal(len(lines), 5) // header, three sizes, summary
	is.True(strings.HasPrefix(lines[0], "Size"))
	is.True(strings.HasPrefix(lines[1], "2 "))
	is.True(strings.Contains(lines[1], "45"))
	is.True(strings.Contains(lines[1], "0.6222"))
	is.True(strings.Contains(lines[2], "0.4667"))
	is.Equal(lines[4], "Highest power: 86.67% at size 4")
	is.Equal(SweepTable(nil), "")
}

func TestPowerCurve(t *testing.T) {
	is := is.New(t)
	points := []power.SweepPoint{{Size: 2, Power: 0}, {Size: 3, Power: 1}, {Size: 4, Power: 0.5}}
	out := PowerCurve(points, 11)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	is.Equal(len(lines), 5)
	is.Equal(lines[1], "   2 |*          | 0.0000")
	is.Equal(lines[2], "   3 |..........*| 1.0000")
	is.Equal(lines[3], "   4 |.....*     | 0.5000")
	is.Equal(PowerCurve(nil, 20), "")
}

func TestTHistogram(t *testing.T) {
	is := is.New(t)
	d := dataset.Reference()
	ts, err := power.TStatistics(d.Observations, 3, d.Mu)
	is.NoErr(err)
	var buf bytes.Buffer
	is.NoErr(THistogram(&buf, ts, 8, 30, 2.919986))
	is.True(strings.Contains(buf.String(), "t statistics: 116"))

	buf.Reset()
	is.NoErr(THistogram(&buf, nil, 8, 30, 2.9))
	is.True(strings.HasPrefix(buf.String(), "no finite t statistics"))
}

func TestExport(t *testing.T) {
	is := is.New(t)
	points := sweep(t)

	var buf bytes.Buffer
	is.NoErr(Export(&buf, points, "json"))
	var decoded []map[string]any
	is.NoErr(json.Unmarshal(buf.Bytes(), &decoded))
	is.Equal(len(decoded), 3)
	is.Equal(decoded[0]["size"], 2.0)
	is.Equal(decoded[0]["result"].(map[string]any)["convention"], "population")

	buf.Reset()
	is.NoErr(Export(&buf, points, "yaml"))
	var fromYAML []power.SweepPoint
	is.NoErr(yaml.Unmarshal(buf.Bytes(), &fromYAML))
	is.Equal(len(fromYAML), 3)
	is.Equal(fromYAML[1].Result.Rejected, 56)
	is.Equal(fromYAML[1].Result.Convention, stats.Population)
	is.True(strings.Contains(buf.String(), "convention: population"))

	err := Export(&buf, points, "csv")
	is.True(errors.Is(err, ErrUnknownFormat))
}
