package script

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/mvz/haparanda/eval"
	"github.com/mvz/haparanda/lang"
)

// Predefined errors (sentinel values).
var (
	ErrCompileHelper = lang.NewError("failed to compile helper")
	ErrDecodeHelpers = lang.NewError("failed to decode helpers")
	ErrRunHelper     = lang.NewError("helper failed")
)

// Definition describes one expression helper.
type Definition struct {
	Arity *int   `yaml:"arity,omitempty" json:"arity,omitempty"`
	Name  string `yaml:"name"            json:"name"`
	Expr  string `yaml:"expr"            json:"expr"`
	Safe  bool   `yaml:"safe,omitempty"  json:"safe,omitempty"`
}

// Decode reads a YAML list of helper definitions.
func Decode(r io.Reader) ([]Definition, error) {
	var defs []Definition

	if err := yaml.NewDecoder(r).Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, ErrDecodeHelpers.Wrap(err)
	}

	for i, def := range defs {
		switch {
		case strings.TrimSpace(def.Name) == "":
			return nil, ErrDecodeHelpers.With(
				slog.Int("index", i),
				slog.String("issue", "missing name"),
			)
		case strings.TrimSpace(def.Expr) == "":
			return nil, ErrDecodeHelpers.With(
				slog.String("name", def.Name),
				slog.String("issue", "missing expr"),
			)
		}
	}

	return defs, nil
}

// Load decodes helper definitions from r and compiles each of them.
func Load(ctx context.Context, r io.Reader, opts ...Option) (eval.Helpers, error) {
	defs, err := Decode(r)
	if err != nil {
		return nil, err
	}

	helpers := make(eval.Helpers, len(defs))

	for _, def := range defs {
		h, err := Compile(ctx, def, opts...)
		if err != nil {
			return nil, err
		}

		helpers[def.Name] = h
	}

	return helpers, nil
}

// Compile turns a definition into a helper.
//
// Without an explicit arity, the helper takes one argument per index the
// expression reads from args, plus the options. An arity below zero makes
// the helper variadic.
func Compile(ctx context.Context, def Definition, opts ...Option) (*eval.Helper, error) {
	cfg := makeConfig(opts...)

	tree, err := parser.Parse(def.Expr)
	if err != nil {
		return nil, ErrCompileHelper.Wrap(err).With(slog.String("name", def.Name))
	}

	scan := &scanner{locals: make(map[string]bool), maxArg: -1}
	ast.Walk(&tree.Node, scan)

	program, err := expr.Compile(
		def.Expr,
		expr.Env(vars{}),
		expr.Patch(&thisPatcher{locals: scan.locals, logger: cfg.logger}),
	)
	if err != nil {
		return nil, ErrCompileHelper.Wrap(err).With(
			slog.String("name", def.Name),
			slog.String("source", def.Expr),
		)
	}

	arity := scan.maxArg + 2
	if def.Arity != nil {
		arity = *def.Arity
	}

	cfg.logger.TraceContext(
		ctx,
		"compile helper",
		slog.String("name", def.Name),
		slog.Int("arity", arity),
		slog.Bool("inferred", def.Arity == nil),
	)

	run := func(this eval.Value, args []eval.Value) (eval.Value, error) {
		return execute(program, def, this, args)
	}

	if arity < 0 {
		return eval.Variadic(run), nil
	}

	return eval.Func(arity, run), nil
}

// execute runs a compiled helper. The options, if the call site passed
// them, are the last bound argument.
func execute(program *vm.Program, def Definition, this eval.Value, args []eval.Value) (eval.Value, error) {
	var opts *eval.Options

	if n := len(args); n > 0 && args[n-1].Kind() == eval.KindOptions {
		opts, args = args[n-1].Options(), args[:n-1]
	}

	env := newEnv(this, opts)
	env.args = args

	result, err := vm.Run(program, env.vars())
	if err != nil {
		return eval.Null(), ErrRunHelper.Wrap(err).With(slog.String("name", def.Name))
	}

	if s, ok := result.(safeString); ok {
		return eval.Safe(string(s)), nil
	}

	v := eval.FromGo(result)
	if def.Safe && v.Kind() == eval.KindString {
		return eval.Safe(v.String()), nil
	}

	return v, nil
}
