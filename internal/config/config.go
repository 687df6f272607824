package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/eclat/internal/engine"
	"github.com/roach88/eclat/internal/itemset"
	"github.com/roach88/eclat/internal/matrix"
	"github.com/roach88/eclat/internal/sink"
	"github.com/roach88/eclat/internal/source"
	"github.com/roach88/eclat/internal/tidset"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full set of settings for a mining run.
//
// Precedence: Default(), then a config file, then explicit CLI flags.
type Config struct {
	MinSupport float64 `json:"min_support" yaml:"min_support"`
	Matrix     bool    `json:"matrix" yaml:"matrix"`
	MatrixKind string  `json:"matrix_kind" yaml:"matrix_kind"`
	TidsetKind string  `json:"tidset_kind" yaml:"tidset_kind"`
	Workers    int     `json:"workers" yaml:"workers"`
	Output     string  `json:"output" yaml:"output"`
	Out        string  `json:"out,omitempty" yaml:"out,omitempty"`
	DB         string  `json:"db,omitempty" yaml:"db,omitempty"`
	Separator  string  `json:"separator" yaml:"separator"`
	ItemKind   string  `json:"item_kind" yaml:"item_kind"`
	Query      *Query  `json:"query,omitempty" yaml:"query,omitempty"`
}

// Query reads transactions from a SQL query instead of a text file.
type Query struct {
	Driver    string `json:"driver" yaml:"driver"`
	DSN       string `json:"dsn" yaml:"dsn"`
	SQL       string `json:"sql" yaml:"sql"`
	Column    string `json:"column" yaml:"column"`
	Separator string `json:"separator" yaml:"separator"`
}

// Default returns the built-in settings.
func Default() Config {
	o := engine.DefaultOptions()
	return Config{
		MinSupport: o.MinSupport,
		Matrix:     o.UseMatrix,
		MatrixKind: string(o.MatrixKind),
		TidsetKind: string(o.TidsetKind),
		Workers:    o.Workers,
		Output:     string(sink.KindBuffer),
		Separator:  source.DefaultSeparator,
		ItemKind:   itemset.KindInt.String(),
	}
}

// Error is a configuration error, with the file position when CUE has one.
type Error struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Load reads a .yaml, .yml or .cue file and validates it against the schema.
// Fields the file omits take their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	ctx := cuecontext.New()
	var v cue.Value

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, &Error{Path: path, Message: fmt.Sprintf("parse YAML: %v", err)}
		}
		if raw == nil {
			raw = map[string]any{}
		}
		v = ctx.Encode(raw)
	case ".cue":
		v = ctx.CompileBytes(data, cue.Filename(path))
	default:
		return Config{}, &Error{Path: path, Message: "unsupported config format (want .yaml, .yml or .cue)"}
	}
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(path, err)
	}

	return decode(ctx, path, v)
}

// Validate checks c against the schema. Use it after flags are applied.
func (c Config) Validate() error {
	// JSON keeps omitempty, so unset optional fields stay absent.
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return formatCUEError("", err)
	}
	_, err = decode(ctx, "", v)
	return err
}

func decode(ctx *cue.Context, path string, v cue.Value) (Config, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(path, err)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, formatCUEError(path, err)
	}
	return cfg, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(path string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Path: path, Message: err.Error()}
	}

	first := errs[0]
	msg := first.Error()
	if field := strings.Join(first.Path(), "."); field != "" && !strings.HasPrefix(msg, field) {
		msg = field + ": " + msg
	}
	out := &Error{Path: path, Message: msg}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
	}
	return out
}

// EngineOptions converts the settings to engine options.
func (c Config) EngineOptions() (engine.Options, error) {
	mk, err := matrix.ParseKind(c.MatrixKind)
	if err != nil {
		return engine.Options{}, err
	}
	tk, err := tidset.ParseKind(c.TidsetKind)
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		MinSupport: c.MinSupport,
		UseMatrix:  c.Matrix,
		MatrixKind: mk,
		TidsetKind: tk,
		Workers:    c.Workers,
	}, nil
}

// Items returns the item label kind.
func (c Config) Items() (itemset.Kind, error) {
	return itemset.ParseKind(c.ItemKind)
}

// Sink returns the output kind.
func (c Config) Sink() (sink.Kind, error) {
	return sink.ParseKind(c.Output)
}
