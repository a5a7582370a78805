package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route [path]",
	Short: "Show the route parameters a request path derives",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		params, err := svc.Route(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(params)
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}
