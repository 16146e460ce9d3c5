package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/config"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/ui"
	"github.com/oakwood-commons/fxpick/pkg/logger"
	"github.com/oakwood-commons/fxpick/pkg/settings"
)

const rootLong = `fxpick shows two currency pickers fed by live exchange rates.

Typing filters the candidates after a short pause; arrow keys move the
highlight, Enter selects and Esc closes the dropdown. The first picker
matches names and allows several selections; the second matches rates
and keeps one.`

const rootExample = `
  fxpick
  fxpick --base USD
  fxpick --source rates.yaml
  fxpick --press usd --press "<down>" --press "<cr>" --no-color
  fxpick filter eu --strategy partial -o json`

// Execute runs the CLI until it finishes or is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree around a fresh set of run settings.
func NewRootCmd() *cobra.Command {
	params := settings.NewCliParams()
	var (
		debug  bool
		source string
	)

	root := &cobra.Command{
		Use:           settings.CliBinaryName,
		Short:         "Debounced currency autocomplete in the terminal",
		Long:          rootLong,
		Example:       rootExample,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				params.MinLogLevel = -1
			}
			assignSource(&params.Source, source)
			return setupLogging(cmd, params)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelector(cmd, params)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&params.ConfigFile, "config-file", "", "path to a YAML config file layered over the defaults")
	pf.StringVar(&source, "source", "", "rate source: a URL prefix (base currency is appended) or a JSON/NDJSON/YAML/TOML file")
	pf.StringVar(&params.Source.Base, "base", "", "base currency for URL sources (default from config)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&params.LogFile, "log-file", "", "write JSON logs to this file")
	pf.BoolVar(&params.NoColor, "no-color", false, "disable color output")

	f := root.Flags()
	f.StringArrayVar(&params.Press, "press", nil, "simulate keys, print one snapshot and exit. Use <Key> for special keys (<Down>, <Up>, <CR>, <Esc>, <Tab>, <BS>, <Click:x,y>); other text types normally")
	f.IntVar(&params.Width, "width", 0, "screen width in columns (default: terminal width)")
	f.IntVar(&params.Height, "height", 0, "screen height in rows (default: terminal height)")
	f.SortFlags = false

	root.AddCommand(newFilterCmd(params), newConfigCmd(params), newVersionCmd())
	return root
}

// assignSource routes the --source flag to the URL or file setting.
func assignSource(s *settings.SourceSettings, flagValue string) {
	v := strings.TrimSpace(flagValue)
	switch {
	case v == "":
	case strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://"):
		s.URL = v
	default:
		s.File = v
	}
}

// setupLogging installs the global logger and carries it, with the run
// settings, in the command context. The interactive screen owns the
// terminal, so without --log-file it logs nowhere.
func setupLogging(cmd *cobra.Command, params *settings.Run) error {
	var out io.Writer = cmd.ErrOrStderr()
	interactive := cmd == cmd.Root() && !params.Headless()

	lgr := logger.GetNoopLogger()
	switch {
	case params.LogFile != "":
		f, err := logger.OpenFile(params.LogFile)
		if err != nil {
			return err
		}
		lgr = logger.Setup(logger.Options{Level: params.MinLogLevel, Output: f})
	case !interactive:
		lgr = logger.Setup(logger.Options{Level: params.MinLogLevel, Output: out})
	}
	named := lgr.WithValues("command", cmd.Name())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = settings.IntoContext(ctx, params)
	cmd.SetContext(logger.WithLogger(ctx, &named))
	return nil
}

// loadConfig resolves, loads and validates the configuration.
func loadConfig(params *settings.Run, reg *filter.Registry) (config.Config, error) {
	cfg, err := config.Load(config.ResolvePath(params.ConfigFile, settings.CliBinaryName))
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(reg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runSelector(cmd *cobra.Command, params *settings.Run) error {
	ctx := cmd.Context()
	lgr := *logger.FromContext(ctx)

	reg, err := filter.DefaultRegistry()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(params, reg)
	if err != nil {
		return err
	}
	src, err := resolveSource(params, cfg, lgr)
	if err != nil {
		return err
	}
	lgr.V(1).Info("starting selector", "source", src.Describe(), "instances", len(cfg.Instances))

	opts := ui.Options{
		Config:   cfg,
		Registry: reg,
		Source:   src,
		Logger:   lgr,
		NoColor:  params.NoColor,
		Width:    params.Width,
		Height:   params.Height,
	}
	if params.Headless() {
		out, err := ui.RenderSnapshot(ctx, opts, params.Press)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	selections, err := ui.Run(ctx, opts)
	if err != nil {
		return err
	}
	// Selections are printed after the screen is released so they can be piped.
	for _, inst := range cfg.Instances {
		if sel := selections[inst.ID]; len(sel) > 0 {
			lgr.Info("final selection", "instance", inst.ID, "count", len(sel))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", inst.ID, strings.Join(candidate.Names(sel), ","))
		}
	}
	return nil
}

// flagChanged reports whether the named flag was set on the command line.
func flagChanged(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
