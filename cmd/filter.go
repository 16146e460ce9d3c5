package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/formatter"
	"github.com/oakwood-commons/fxpick/internal/limiter"
	"github.com/oakwood-commons/fxpick/pkg/logger"
	"github.com/oakwood-commons/fxpick/pkg/settings"
)

var strategyNames = []string{filter.Partial, filter.Exact, filter.Rate, filter.Fuzzy, filter.CEL}

type filterOptions struct {
	strategy string
	output   string
	decimals int
	limits   limiter.Config
}

func newFilterCmd(params *settings.Run) *cobra.Command {
	opts := &filterOptions{}
	c := &cobra.Command{
		Use:   "filter QUERY",
		Short: "Print the candidates a strategy keeps for QUERY",
		Long: `Load candidates from the configured source and print the ones the
named strategy keeps for QUERY, with no debounce.`,
		Example: `
  fxpick filter eu
  fxpick filter 0.7 --strategy rate
  fxpick filter 'rate > 1.0 && name.startsWith("S")' --strategy cel -o yaml
  fxpick filter usd --strategy fuzzy --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, params, opts, args[0])
		},
	}
	f := c.Flags()
	f.StringVar(&opts.strategy, "strategy", filter.Partial, "filter strategy: "+strings.Join(strategyNames, "|"))
	f.StringVarP(&opts.output, "output", "o", formatter.FormatTable, "output format: "+strings.Join(formatter.Formats, "|"))
	f.IntVar(&opts.decimals, "decimals", 2, "rate decimals in table output (-1 for the exact value)")
	f.IntVar(&opts.limits.Limit, "limit", 0, "print at most N results")
	f.IntVar(&opts.limits.Offset, "offset", 0, "skip the first N results")
	f.IntVar(&opts.limits.Tail, "tail", 0, "print the last N results (ignores --offset)")
	return c
}

func runFilter(cmd *cobra.Command, params *settings.Run, opts *filterOptions, query string) error {
	if err := opts.limits.Validate(); err != nil {
		return fmt.Errorf("record limiting: %w", err)
	}
	if flagChanged(cmd.Flags(), "tail") && flagChanged(cmd.Flags(), "limit") {
		return errors.New("--tail and --limit cannot be combined")
	}
	if strings.TrimSpace(query) == "" {
		return errors.New("query must not be empty")
	}
	ctx := cmd.Context()
	lgr := *logger.FromContext(ctx)

	reg, err := filter.DefaultRegistry()
	if err != nil {
		return err
	}
	fn, err := reg.Resolve(opts.strategy)
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
	list, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	out, err := filter.Apply(fn, list, query)
	if err != nil {
		return err
	}
	lgr.V(1).Info("filtered", "strategy", opts.strategy, "query", query, "candidates", len(list), "results", len(out))
	out = limiter.Apply(opts.limits, out)

	return formatter.Write(cmd.OutOrStdout(), out, opts.output, formatter.Options{
		NoColor:  params.NoColor,
		Decimals: opts.decimals,
	})
}
