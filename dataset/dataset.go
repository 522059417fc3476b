// Package dataset holds observation sets for the power estimator: the
// reference Hepomanol tumor-length data, and loaders for user files.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmpty     = errors.New("dataset has no observations")
	ErrMalformed = errors.New("malformed observation")
)

// Dataset is an ordered set of observations plus the mean of the group it
// is compared against.
type Dataset struct {
	Name         string    `yaml:"name"`
	Description  string    `yaml:"description,omitempty"`
	Mu           float64   `yaml:"mu"`
	Observations []float64 `yaml:"observations"`

	// HasMu is false when the source did not state a mean, e.g. a plain
	// text file or a YAML file without a mu key.
	HasMu bool `yaml:"-"`
}

// Reference returns the tumor lengths of ten patients treated with
// Hepomanol. Mu is the placebo group's average length.
func Reference() *Dataset {
	return &Dataset{
		Name:         "hepomanol",
		Description:  "tumor lengths (cm) after Hepomanol treatment; mu is the placebo average",
		Mu:           5,
		Observations: []float64{5, 2, 2, 5, 2.5, 2, 2, 3, 2.5, 2.25},
		HasMu:        true,
	}
}

func (d *Dataset) Len() int {
	return len(d.Observations)
}

// Mean of the observations, or 0 for an empty set.
func (d *Dataset) Mean() float64 {
	if len(d.Observations) == 0 {
		return 0
	}
	return lo.Sum(d.Observations) / float64(len(d.Observations))
}

// Validate checks that the dataset is usable by the estimator.
func (d *Dataset) Validate() error {
	if len(d.Observations) == 0 {
		return ErrEmpty
	}
	for i, v := range d.Observations {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d is %v", ErrMalformed, i, v)
		}
	}
	if math.IsNaN(d.Mu) || math.IsInf(d.Mu, 0) {
		return fmt.Errorf("%w: mu is %v", ErrMalformed, d.Mu)
	}
	return nil
}

// Copy returns a deep copy so callers can hand the observations out freely.
func (d *Dataset) Copy() *Dataset {
	c := *d
	c.Observations = append([]float64(nil), d.Observations...)
	return &c
}

func (d *Dataset) String() string {
	strs := lo.Map(d.Observations, func(v float64, _ int) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	})
	return fmt.Sprintf("%s (n=%d, mean=%.4g, mu=%g): [%s]", d.Name, d.Len(), d.Mean(), d.Mu,
		strings.Join(strs, ", "))
}

// Load reads a dataset from a YAML file (.yaml, .yml) or a plain text file
// of numbers separated by whitespace or commas. Plain text files carry no
// mu; the caller supplies one. HasMu reports whether the file set mu.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f, name)
	}
	return ParseText(f, name)
}

func ParseYAML(r io.Reader, name string) (*Dataset, error) {
	var raw struct {
		Name         string    `yaml:"name"`
		Description  string    `yaml:"description"`
		Mu           *float64  `yaml:"mu"`
		Observations []float64 `yaml:"observations"`
	}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	d := &Dataset{
		Name:         raw.Name,
		Description:  raw.Description,
		Observations: raw.Observations,
	}
	if raw.Mu != nil {
		d.Mu = *raw.Mu
		d.HasMu = true
	}
	if d.Name == "" {
		d.Name = name
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func ParseText(r io.Reader, name string) (*Dataset, error) {
	d := &Dataset{Name: name}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == ';'
		})
		for _, fld := range fields {
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, line, fld)
			}
			d.Observations = append(d.Observations, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Save writes the dataset as YAML.
func (d *Dataset) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
