package cmd

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/launchpad/common/errs"
	"github.com/gaze-network/launchpad/internal/config"
	"github.com/gaze-network/launchpad/modules/launchpad"
	"github.com/gaze-network/launchpad/pkg/logger"
	"github.com/gaze-network/launchpad/pkg/logger/slogx"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type exportCmdOptions struct {
	SaleID string
}

func NewExportCommand() *cobra.Command {
	opts := &exportCmdOptions{}

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Upload the signed allocation report of a sale",
		Example: `launchpad export --sale 7b0f4d3e-5d1a-4a5b-9d7e-2f1c3a4b5c6d`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportHandler(opts, cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.SaleID, "sale", "", "Sale id to export")

	return cmd
}

func exportHandler(opts *exportCmdOptions, cmd *cobra.Command, _ []string) error {
	saleID := strings.TrimSpace(opts.SaleID)
	if saleID == "" {
		return errors.Wrap(errs.InvalidArgument, "--sale is required")
	}
	conf := config.Load()
	ctx := logger.WithContext(cmd.Context(), slogx.String("module", "launchpad"), slogx.String("command", "export"))

	injector := do.New(Modules)
	do.ProvideValue(injector, conf)
	do.ProvideValue(injector, ctx)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			logger.WarnContext(ctx, "Failed while shutting down", slogx.Error(err))
		}
	}()

	module, err := do.Invoke[*launchpad.Module](injector)
	if err != nil {
		return errors.Wrap(err, "can't init launchpad module")
	}
	exporter, err := module.NewExporter(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	export, err := exporter.Export(ctx, saleID)
	if err != nil {
		return errors.Wrapf(err, "can't export sale %q", saleID)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Object key: %s\n", export.ObjectKey)
	fmt.Fprintf(out, "Rows: %d\n", export.Rows)
	fmt.Fprintf(out, "SHA-256: %s\n", export.SHA256)
	if export.Signature != "" {
		fmt.Fprintf(out, "Signature: %s\n", export.Signature)
		fmt.Fprintf(out, "Public key: %s\n", export.PublicKey)
	}
	return nil
}
