package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexmglover/Deep"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of deep",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deep version %s\n", strings.TrimSpace(deep.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
