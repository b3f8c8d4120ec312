package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/source"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "neutral", cfg.Policy)
	assert.Equal(t, source.DefaultSuffix, cfg.LogSuffix)
	assert.Equal(t, source.DefaultSkip, cfg.Skip)
	assert.Equal(t, 4, cfg.AddWorkPrecision)
	assert.Zero(t, cfg.MaxRounds)
	assert.Empty(t, cfg.Database)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Full(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Config{
		Workers:          8,
		Policy:           "ff",
		LogSuffix:        "vhpop-log",
		Skip:             []string{"time"},
		AddWorkPrecision: 2,
		MaxRounds:        500000,
		Database:         "results.db",
	}, cfg)

	p, err := cfg.OrderingPolicy()
	require.NoError(t, err)
	assert.Equal(t, ir.PolicyFirstFirst, p)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "unknown.yaml"))
	require.Error(t, err)

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "yaml", ce.Field)
	assert.Contains(t, ce.Message, "polcy")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "cannot read config file")
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("policy: lLIFO\n"))
	require.NoError(t, err)
	assert.Equal(t, "lLIFO", cfg.Policy)
	assert.Equal(t, 4, cfg.AddWorkPrecision)
	assert.Equal(t, source.DefaultSuffix, cfg.LogSuffix)
}

func TestParse_EmptySkipDisablesFiltering(t *testing.T) {
	cfg, err := Parse([]byte("skip: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Skip)

	opts := cfg.SourceOptions()
	assert.NotNil(t, opts.Skip)
	assert.Empty(t, opts.Skip)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"unknown policy", "policy: FF\n", "policy"},
		{"negative workers", "workers: -1\n", "workers"},
		{"zero precision", "add_work_precision: 0\n", "add_work_precision"},
		{"precision too large", "add_work_precision: 13\n", "add_work_precision"},
		{"negative max rounds", "max_rounds: -1\n", "max_rounds"},
		{"empty suffix", "log_suffix: \"\"\n", "log_suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestParse_WrongType(t *testing.T) {
	_, err := Parse([]byte("workers: many\n"))
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "yaml", ce.Field)
}

func TestSourceOptions(t *testing.T) {
	cfg := Default()
	cfg.LogSuffix = "vhpop-log"

	opts := cfg.SourceOptions()
	assert.Equal(t, "vhpop-log", opts.Suffix)
	assert.Equal(t, source.DefaultSkip, opts.Skip)
}

func TestError_Format(t *testing.T) {
	assert.Equal(t, "policy: bad", (&Error{Field: "policy", Message: "bad"}).Error())
	assert.Equal(t, "bad", (&Error{Message: "bad"}).Error())
}

func TestLoad_WrapsPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(p, []byte("workers: -2\n"), 0o644))

	_, err := Load(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
}
