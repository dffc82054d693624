package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/rpnd/internal/version"
)

// newVersionCommand creates the "version" subcommand.
func newVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			return printValue(cmd.OutOrStdout(), output, info, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, info.String())
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	return cmd
}
