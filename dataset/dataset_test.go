package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestReference(t *testing.T) {
	is := is.New(t)
	d := Reference()
	is.Equal(d.Len(), 10)
	is.Equal(d.Mu, 5.0)
	is.NoErr(d.Validate())
	is.Equal(d.Mean(), 2.825)
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	d := Reference()
	c := d.Copy()
	c.Observations[0] = 100
	is.Equal(d.Observations[0], 5.0)
}

func TestParseText(t *testing.T) {
	is := is.New(t)
	in := "# lengths\n5, 2 2\n5;2.5\t2  # trailing comment\n\n2 3 2.5 2.25\n"
	d, err := ParseText(strings.NewReader(in), "tumors")
	is.NoErr(err)
	is.Equal(d.Name, "tumors")
	is.Equal(d.Observations, Reference().Observations)
}

func TestParseTextErrors(t *testing.T) {
	is := is.New(t)
	_, err := ParseText(strings.NewReader("# nothing here\n"), "x")
	is.Equal(err, ErrEmpty)

	_, err = ParseText(strings.NewReader("1 2 abc"), "x")
	is.True(errors.Is(err, ErrMalformed))

	_, err = ParseText(strings.NewReader("1 NaN 3"), "x")
	is.True(errors.Is(err, ErrMalformed))
}

func TestYAMLRoundTrip(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Reference().Save(&buf))
	d, err := ParseYAML(&buf, "ignored")
	is.NoErr(err)
	is.Equal(d, Reference())
}

func TestParseYAMLDefaultsName(t *testing.T) {
	is := is.New(t)
	d, err := ParseYAML(strings.NewReader("mu: 3\nobservations: [1, 2, 3.5]\n"), "mine")
	is.NoErr(err)
	is.Equal(d.Name, "mine")
	is.Equal(d.Mu, 3.0)
	is.Equal(d.Observations, []float64{1, 2, 3.5})

	_, err = ParseYAML(strings.NewReader(""), "empty")
	is.Equal(err, ErrEmpty)

	_, err = ParseYAML(strings.NewReader("mu: 3\n"), "nomu")
	is.Equal(err, ErrEmpty)
}

func TestLoad(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	txt := filepath.Join(dir, "lengths.txt")
	is.NoErr(os.WriteFile(txt, []byte("1 2 3\n"), 0o644))
	d, err := Load(txt)
	is.NoErr(err)
	is.Equal(d.Name, "lengths")
	is.Equal(d.Len(), 3)

	yml := filepath.Join(dir, "ref.yaml")
	f, err := os.Create(yml)
	is.NoErr(err)
	is.NoErr(Reference().Save(f))
	is.NoErr(f.Close())
	d, err = Load(yml)
	is.NoErr(err)
	is.Equal(d.Name, "hepomanol")

	_, err = Load(filepath.Join(dir, "missing.txt"))
	is.True(errors.Is(err, os.ErrNotExist))
}

func TestString(t *testing.T) {
	is := is.New(t)
	s := Reference().String()
	is.True(strings.HasPrefix(s, "hepomanol (n=10, mean=2.825, mu=5): [5, 2, 2, 5, 2.5"))
}

func TestHasMu(t *testing.T) {
	is := is.New(t)
	d, err := ParseYAML(strings.NewReader("mu: 0\nobservations: [1, 2]\n"), "zero")
	is.NoErr(err)
	is.True(d.HasMu)
	is.Equal(d.Mu, 0.0)

	d, err = ParseYAML(strings.NewReader("observations: [1, 2]\n"), "nomu")
	is.NoErr(err)
	is.True(!d.HasMu)

	d, err = ParseText(strings.NewReader("1 2"), "txt")
	is.NoErr(err)
	is.True(!d.HasMu)

	dir := t.TempDir()
	upper := filepath.Join(dir, "d.YAML")
	is.NoErr(os.WriteFile(upper, []byte("mu: 3\nobservations: [1, 2, 3]\n"), 0o644))
	d, err = Load(upper)
	is.NoErr(err)
	is.True(d.HasMu)
	is.Equal(d.Mu, 3.0)
}
