package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-applier/internal/platform"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <url>",
	Short: "Print the platform an application URL is routed to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), platform.Classify(args[0]))
		return err
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
