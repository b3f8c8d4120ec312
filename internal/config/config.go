// Package config loads the optional plantrace configuration file.
//
// The file is YAML, decoded strictly (unknown keys are errors), then unified
// with an embedded CUE schema that supplies defaults and range checks.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/plantrace/internal/ir"
	"github.com/roach88/plantrace/internal/source"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved configuration.
type Config struct {
	Workers          int      `json:"workers"`
	Policy           string   `json:"policy"`
	LogSuffix        string   `json:"log_suffix"`
	Skip             []string `json:"skip"`
	AddWorkPrecision int      `json:"add_work_precision"`
	MaxRounds        int64    `json:"max_rounds"`
	Database         string   `json:"database"`
}

// Error is a configuration error. Pos is set when CUE reports a position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// file mirrors the YAML document. Pointers distinguish omitted keys.
type file struct {
	Workers          *int     `yaml:"workers"`
	Policy           *string  `yaml:"policy"`
	LogSuffix        *string  `yaml:"log_suffix"`
	Skip             []string `yaml:"skip"`
	AddWorkPrecision *int     `yaml:"add_work_precision"`
	MaxRounds        *int64   `yaml:"max_rounds"`
	Database         *string  `yaml:"database"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := resolve(file{})
	if err != nil {
		// The embedded schema's defaults always validate.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads and validates the file at path. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Message: fmt.Sprintf("cannot read config file: %v", err)}
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML document. An empty document yields the
// defaults.
func Parse(data []byte) (Config, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &Error{Field: "yaml", Message: err.Error()}
	}
	return resolve(f)
}

func resolve(f file) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def.Unify(ctx.Encode(f.values()))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(err)
	}
	if _, err := ir.ParsePolicy(cfg.Policy); err != nil {
		return Config{}, &Error{Field: "policy", Message: err.Error()}
	}
	return cfg, nil
}

// values returns only the keys present in the document.
func (f file) values() map[string]any {
	m := map[string]any{}
	if f.Workers != nil {
		m["workers"] = *f.Workers
	}
	if f.Policy != nil {
		m["policy"] = *f.Policy
	}
	if f.LogSuffix != nil {
		m["log_suffix"] = *f.LogSuffix
	}
	if f.Skip != nil {
		m["skip"] = f.Skip
	}
	if f.AddWorkPrecision != nil {
		m["add_work_precision"] = *f.AddWorkPrecision
	}
	if f.MaxRounds != nil {
		m["max_rounds"] = *f.MaxRounds
	}
	if f.Database != nil {
		m["database"] = *f.Database
	}
	return m
}

// OrderingPolicy returns the validated policy.
func (c Config) OrderingPolicy() (ir.OrderingPolicy, error) {
	return ir.ParsePolicy(c.Policy)
}

// SourceOptions returns the discovery options for this configuration.
func (c Config) SourceOptions() source.Options {
	skip := c.Skip
	if skip == nil {
		skip = []string{}
	}
	return source.Options{Suffix: c.LogSuffix, Skip: skip}
}

// formatCUEError extracts the field path and position from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	ce := &Error{Message: fmt.Sprintf(format, args...)}
	if path := first.Path(); len(path) > 0 {
		ce.Field = path[len(path)-1]
	}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
