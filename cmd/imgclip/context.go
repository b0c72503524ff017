package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/imgclip/internal/config"
	"github.com/dshills/imgclip/internal/config/loader"
	"github.com/dshills/imgclip/internal/config/source"
	"github.com/dshills/imgclip/internal/host"
	"github.com/dshills/imgclip/internal/logging"
)

type commandContext struct {
	configFlag string
	projectDir string
	logLevel   string
	logFormat  string
	sets       []string

	logger *slog.Logger
}

func newCommandContext() *commandContext {
	return &commandContext{logger: logging.NewNop()}
}

// setupLogger builds the logger from flags, falling back to the environment.
func (c *commandContext) setupLogger(w io.Writer) error {
	level := firstNonEmpty(c.logLevel, os.Getenv(loader.DefaultEnvPrefix+config.EnvLogLevel), "warn")
	format := firstNonEmpty(c.logFormat, os.Getenv(loader.DefaultEnvPrefix+config.EnvLogFormat))

	logger, err := logging.New(w, logging.Options{Level: level, Format: format, Prefix: "imgclip"})
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// load builds a resolver for h and loads every configuration source.
// The caller must close the returned stack and resolver.
func (c *commandContext) load(ctx context.Context, h host.Host, watch bool, opts ...config.Option) (*source.Stack, *config.Resolver, error) {
	args, err := parseSets(c.sets)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]config.Option{
		config.WithHost(h),
		config.WithLogger(logging.NewComponentLogger(c.logger, "resolver")),
	}, opts...)
	r := config.New(opts...)

	configFile := firstNonEmpty(c.configFlag, os.Getenv(loader.DefaultEnvPrefix+config.EnvConfigFile))
	stack := source.New(r,
		source.WithConfigFile(configFile),
		source.WithProjectDir(c.projectDir),
		source.WithArgs(args),
		source.WithWatcher(watch),
		source.WithLogger(logging.NewComponentLogger(c.logger, "source")),
	)

	if err := stack.Load(ctx); err != nil {
		_ = stack.Close()
		r.Close()
		return nil, nil, err
	}
	return stack, r, nil
}

// hostFlags describe the file whose options are resolved.
type hostFlags struct {
	file     string
	dir      string
	filetype string
}

func (f *hostFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Current file path")
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "Current directory (defaults to the file's directory)")
	cmd.Flags().StringVarP(&f.filetype, "filetype", "t", "", "Filetype (defaults to detection from the file extension)")
}

func (f *hostFlags) host() host.Static {
	return host.Static{Path: f.file, Dir: f.dir, Type: f.filetype}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
