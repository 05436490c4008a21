package main

import (
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/compiler"
	"github.com/reoring/formskema/config"
	"github.com/reoring/formskema/expr"
	"github.com/reoring/formskema/logger"
	"github.com/reoring/formskema/source"
)

type globalFlags struct {
	configFile string
	logLevel   string
	strictKeys bool
}

// app is the per-invocation wiring shared by subcommands.
type app struct {
	cfg       *config.Config
	log       logger.Logger
	registry  formskema.TypeRegistry
	compiler  *compiler.Compiler
	evaluator *expr.CELEvaluator
	strict    bool
}

// NewRootCmd returns the formskema command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "formskema",
		Short:         "Compile and inspect declarative form trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error, disabled)")
	root.PersistentFlags().BoolVar(&g.strictKeys, "strict-keys", false, "Reject JSON objects with repeated keys")

	root.AddCommand(
		compileCmd(g),
		defaultsCmd(g),
		validateCmd(g),
		normalizeCmd(g),
		resolveCmd(g),
	)
	return root
}

func newApp(cmd *cobra.Command, g *globalFlags) (*app, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg, err = config.Merge(cfg, config.Config{Log: config.LogConfig{Level: logger.LogLevel(g.logLevel)}})
		if err != nil {
			return nil, err
		}
	}
	lc := cfg.LoggerConfig()
	lc.Output = cmd.ErrOrStderr()
	log := logger.NewLogger(lc)

	reg := formskema.DefaultRegistry()
	c, err := compiler.New(reg, compiler.WithLogger(log), compiler.WithCacheSize(cfg.Compiler.CacheSize))
	if err != nil {
		return nil, err
	}
	ev, err := expr.NewCELEvaluator(expr.WithCostLimit(cfg.Expr.CostLimit), expr.WithCacheSize(cfg.Expr.CacheSize))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, registry: reg, compiler: c, evaluator: ev, strict: g.strictKeys}, nil
}

func (a *app) close() { a.evaluator.Close() }

func (a *app) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.ContextWithLogger(ctx, a.log)
}

func (a *app) loadTree(path string) ([]*formskema.FieldDef, error) {
	var opts []source.Option
	if a.strict {
		opts = append(opts, source.WithStrictKeys())
	}
	return source.LoadTreeFile(path, opts...)
}

func (a *app) compile(cmd *cobra.Command, path string) (*compiler.Form, error) {
	fields, err := a.loadTree(path)
	if err != nil {
		return nil, err
	}
	return a.compiler.Compile(a.context(cmd), fields)
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
