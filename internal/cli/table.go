package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/errors"
	"github.com/eepp/lttngpack/pkg/report"
)

// Output formats for the version table.
const (
	formatTable = "table"
	formatPlain = "plain"
	formatJSON  = "json"
)

// tableOpts holds the command-line flags for the table command.
type tableOpts struct {
	format  string   // table, plain, or json
	output  string   // output file path (stdout if empty)
	refresh bool     // bypass the response cache
	noCache bool     // disable caching entirely
	distros []string // restrict to these distros
}

func defaultTableOpts() *tableOpts {
	return &tableOpts{format: formatTable}
}

func addTableFlags(flags *pflag.FlagSet, opts *tableOpts) {
	flags.StringVarP(&opts.format, "format", "f", opts.format, "output format (table, plain, json)")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	flags.BoolVar(&opts.refresh, "refresh", false, "bypass cached responses")
	flags.BoolVar(&opts.noCache, "no-cache", false, "disable response caching")
	flags.StringSliceVarP(&opts.distros, "distro", "d", nil, "restrict to the named distros (repeatable)")
}

// tableCommand creates the table command, which collects all distros and
// renders the version matrix.
func (c *CLI) tableCommand() *cobra.Command {
	opts := defaultTableOpts()

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Render the LTTng package version table",
		Long: `Collect LTTng package versions from all data sources and render them
as a table.

Examples:
  lttngpack table                        # Styled table on stdout
  lttngpack table --format json          # JSON matrix
  lttngpack table -d Debian -d Ubuntu    # Only two distros
  lttngpack table --refresh              # Ignore cached responses`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTable(cmd.Context(), opts)
		},
	}

	addTableFlags(cmd.Flags(), opts)
	return cmd
}

func (c *CLI) runTable(ctx context.Context, opts *tableOpts) error {
	if opts.format != formatTable && opts.format != formatPlain && opts.format != formatJSON {
		return errors.New(errors.ErrCodeInvalidFormat,
			"unknown format %q (available: %s, %s, %s)", opts.format, formatTable, formatPlain, formatJSON)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend, err := c.newBackend(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	filter := opts.distros
	if len(filter) == 0 {
		filter = cfg.Distros
	}
	ps, err := filterProviders(providers(cfg, backend, opts.refresh), filter)
	if err != nil {
		return err
	}

	m, err := c.collectMatrix(ctx, ps)
	if err != nil {
		return err
	}

	out, cleanup, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer cleanup()

	return writeMatrix(out, m, opts.format)
}

// collectMatrix fetches all providers behind a spinner and assembles the matrix.
func (c *CLI) collectMatrix(ctx context.Context, ps []distro.Provider) (*report.Matrix, error) {
	p := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Collecting package data...")
	spinner.Start()

	distros, err := distro.Collect(ctx, ps)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	m := report.Build(distros)
	p.done(fmt.Sprintf("Collected %d distros, %d rows", len(distros), len(m.Rows)))
	return m, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func writeMatrix(w io.Writer, m *report.Matrix, format string) error {
	switch format {
	case formatJSON:
		return m.JSON(w)
	case formatPlain:
		_, err := fmt.Fprintln(w, m.Plain())
		return err
	default:
		// Fall back to the plain table when stdout isn't a terminal so
		// redirected output stays free of styling.
		if f, ok := w.(*os.File); ok && !isatty.IsTerminal(f.Fd()) {
			_, err := fmt.Fprintln(w, m.Plain())
			return err
		}
		_, err := fmt.Fprintln(w, m.Table())
		return err
	}
}
