package main

import (
	"fmt"

	"github.com/klyr/fragpath/internal/tempfile"
	"github.com/spf13/cobra"
)

func newTempFileCmd() *cobra.Command {
	var prefix string
	var suffix string
	var dir string

	cmd := &cobra.Command{
		Use:   "tempfile",
		Short: "Create an empty temporary file and print its path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := tempfile.Create(dir, prefix, suffix)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "File name prefix, at least three characters")
	cmd.Flags().StringVar(&suffix, "suffix", "", "File name suffix (default "+tempfile.DefaultSuffix+")")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to create the file in (default system temp dir)")
	_ = cmd.MarkFlagRequired("prefix")

	return cmd
}
