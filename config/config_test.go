package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetFloat64(ConfigMu), 5.0)
	is.Equal(c.GetFloat64(ConfigAlpha), 0.05)
	is.Equal(c.GetString(ConfigConvention), "population")
	is.Equal(c.GetInt(ConfigSweepFrom), 2)
	is.Equal(c.GetInt(ConfigSweepTo), 8)
}

func TestLoadFlagsAndArgs(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"--alpha", "0.01", "--convention=sample", "sweep", "2", "5"}))
	is.Equal(c.GetFloat64(ConfigAlpha), 0.01)
	is.Equal(c.GetString(ConfigConvention), "sample")
	is.Equal(c.GetFloat64(ConfigMu), 5.0)
	is.Equal(c.Args(), []string{"sweep", "2", "5"})
	_, ok := c.SanitizedSettings()["args"]
	is.True(!ok)
}

func TestLoadEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("TPOWER_MAX_COMBINATIONS", "1000")
	c := &Config{}
	is.NoErr(c.Load(nil))
	is.Equal(c.GetInt(ConfigMaxCombinations), 1000)
}

func TestLoadConfigFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "tpower.yaml")
	is.NoErr(os.WriteFile(path, []byte("mu: 4.5\nworkers: 2\n"), 0o644))
	c := &Config{}
	is.NoErr(c.Load([]string{"--config-file", path, "--workers", "8"}))
	is.Equal(c.GetFloat64(ConfigMu), 4.5)
	// flags win over the file
	is.Equal(c.GetInt(ConfigWorkers), 8)
}

func TestLoadBadFlag(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.True(c.Load([]string{"--alpha", "lots"}) != nil)
}

func TestPrecedenceFlagEnvFileDefault(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "tpower.yaml")
	is.NoErr(os.WriteFile(path, []byte("alpha: 0.2\nworkers: 2\nsweep-to: 6\n"), 0o644))
	t.Setenv("TPOWER_ALPHA", "0.1")
	t.Setenv("TPOWER_WORKERS", "3")
	c := &Config{}
	is.NoErr(c.Load([]string{"--config-file", path, "--alpha", "0.01"}))
	is.Equal(c.GetFloat64(ConfigAlpha), 0.01) // flag over env and file
	is.Equal(c.GetInt(ConfigWorkers), 3)      // env over file
	is.Equal(c.GetInt(ConfigSweepTo), 6)      // file over default
	is.Equal(c.GetInt(ConfigSweepFrom), 2)    // default
}
