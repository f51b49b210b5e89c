package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/example/quicktoken/internal/encoding"
	"github.com/spf13/cobra"
)

func newEncodingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encodings",
		Short: "List supported base encodings and model aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "Base encodings:")
			for _, name := range encoding.Names() {
				fmt.Fprintf(w, "  %s\n", name)
			}

			fmt.Fprintln(w, "\nModel aliases:")
			tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
			for _, model := range encoding.Models() {
				name, _ := encoding.ModelEncoding(model)
				fmt.Fprintf(tw, "  %s\t%s\n", model, name)
			}
			return tw.Flush()
		},
	}
}
