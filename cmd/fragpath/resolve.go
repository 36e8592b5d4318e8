package main

import (
	"fmt"

	"github.com/klyr/fragpath/internal/normalize"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var decodeDepth int
	var lowercase bool
	var decode bool

	cmd := &cobra.Command{
		Use:   "resolve [fragment...]",
		Short: "Resolve path fragments relative to each other",
		Example: `  fragpath resolve /lib/foo ./bar     # /lib/bar
  fragpath resolve /lib/ util/../io    # /lib/io`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result string
			if decode || lowercase {
				result = normalize.ApplyAll(args, normalize.Options{MaxDecodeDepth: decodeDepth, Lowercase: lowercase})
			} else {
				result = normalize.Resolve(args...)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().BoolVar(&decode, "decode", false, "Percent-decode fragments before resolving")
	cmd.Flags().IntVar(&decodeDepth, "decode-depth", 2, "Maximum decode rounds when --decode is set")
	cmd.Flags().BoolVar(&lowercase, "lowercase", false, "Lowercase fragments before resolving")

	return cmd
}

func newRelativeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relative <parent> <child>",
		Short: "Resolve child against parent if child starts with \".\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), normalize.ResolveRelative(args[0], args[1]))
			return err
		},
	}
}
