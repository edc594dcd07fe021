package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"xlinventory/adapters/output"
	"xlinventory/domain/core"
	"xlinventory/domain/inventory"
	"xlinventory/internal/builder"
	"xlinventory/internal/config"
	"xlinventory/internal/container"
	"xlinventory/internal/errors"
	"xlinventory/internal/report"
)

const indentWidth = 2

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		if errors.IsAppError(err) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", errors.GetCode(err), err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// options are the flags shared by every command
type options struct {
	settingsPath string
	indent       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var list bool
	var host string

	rootCmd := &cobra.Command{
		Use:   "xlinventory",
		Short: "Dynamic inventory built from spreadsheet sheets",
		Long: `Builds a dynamic inventory from the sheets of a workbook, a directory of
CSV files or a set of PostgreSQL tables, combined with the group variables of
a YAML settings document.

Run with --list for the whole inventory or --host NAME for one host.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case host != "":
				return runHost(cmd.Context(), cmd.OutOrStdout(), opts, host)
			case list:
				return runRender(cmd.Context(), cmd.OutOrStdout(), opts)
			default:
				return cmd.Help()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.settingsPath, "settings", "", "Settings document (default $INVENTORY_SETTINGS or common_val.yml)")
	rootCmd.PersistentFlags().BoolVar(&opts.indent, "indent", false, "Indent JSON output")
	rootCmd.Flags().BoolVar(&list, "list", false, "Print the whole inventory")
	rootCmd.Flags().StringVar(&host, "host", "", "Print the variables of one host")
	rootCmd.MarkFlagsMutuallyExclusive("list", "host")

	rootCmd.AddCommand(
		newRenderCmd(opts, "render", "Print the inventory document"),
		newRenderCmd(opts, "list", "Print the inventory document (same as --list)"),
		newHostCmd(opts),
		newCheckCmd(opts),
		newSummaryCmd(opts),
	)

	return rootCmd
}

func newRenderCmd(opts *options, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

func newHostCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "host NAME",
		Short: "Print the variables of one host",
		Long: `Print the variables of one host. An unknown host prints an empty
mapping, as dynamic inventory consumers expect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Build the inventory twice and print its fingerprint",
		Long: `Build the inventory twice from the same inputs and fail unless both
serializations are byte-identical. Prints the SHA-256 of the document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print group and host statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

func buildDocument(ctx context.Context, opts *options) (*inventory.Document, *config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.indent {
		cfg.Output.Indent = true
	}

	c, err := container.New(cfg, opts.settingsPath, nil)
	if err != nil {
		return nil, nil, err
	}

	doc, err := c.Service.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	return doc, cfg, nil
}

func indentOf(cfg *config.Config) int {
	if cfg.Output.Indent {
		return indentWidth
	}
	return 0
}

func runRender(ctx context.Context, w io.Writer, opts *options) error {
	doc, cfg, err := buildDocument(ctx, opts)
	if err != nil {
		return err
	}
	if err := output.NewJSONWriter(w, indentOf(cfg)).Write(doc); err != nil {
		return errors.OutputError(err)
	}
	return nil
}

func runHost(ctx context.Context, w io.Writer, opts *options, host string) error {
	doc, cfg, err := buildDocument(ctx, opts)
	if err != nil {
		return err
	}
	if err := output.NewJSONWriter(w, indentOf(cfg)).Write(builder.HostVarsFor(doc, host)); err != nil {
		return errors.OutputError(err)
	}
	return nil
}

func runCheck(ctx context.Context, w io.Writer, opts *options) error {
	var hashes [2]core.Hash
	var doc *inventory.Document
	for i := range hashes {
		var err error
		doc, _, err = buildDocument(ctx, opts)
		if err != nil {
			return err
		}
		data, err := output.Encode(doc, 0)
		if err != nil {
			return errors.OutputError(err)
		}
		hashes[i] = core.NewHash(data)
	}

	if !hashes[0].Equals(hashes[1]) {
		return errors.New(errors.CodeInternalError,
			fmt.Sprintf("inventory is not reproducible: %s != %s", hashes[0].Short(), hashes[1].Short()))
	}

	fmt.Fprintf(w, "%s  %d groups, %d hosts\n", hashes[0], doc.Groups.Len(), doc.HostVars.Len())
	return nil
}

func runSummary(ctx context.Context, w io.Writer, opts *options) error {
	doc, _, err := buildDocument(ctx, opts)
	if err != nil {
		return err
	}

	summary, err := report.Summarize(doc)
	if err != nil {
		return errors.Wrapf(err, "failed to summarize %d groups", doc.Groups.Len())
	}

	fmt.Fprintf(w, "Groups:        %d (%d with variables)\n", summary.Groups, summary.GroupsWithVars)
	fmt.Fprintf(w, "Hosts:         %d\n", summary.Hosts)
	fmt.Fprintf(w, "Memberships:   %d\n", summary.Memberships)
	fmt.Fprintf(w, "Group size:    mean %.2f, median %.1f, max %.0f\n", summary.MeanGroupSize, summary.MedianGroup, summary.MaxGroupSize)
	if len(summary.Ungrouped) > 0 {
		fmt.Fprintf(w, "Ungrouped:     %v\n", summary.Ungrouped)
	}
	if len(summary.UndefinedHosts) > 0 {
		fmt.Fprintf(w, "Undefined:     %v\n", summary.UndefinedHosts)
	}
	return nil
}
