package main

import (
	"fmt"

	"github.com/spf13/cobra"

	aidb "github.com/sion-neko/AI-DB"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aidb",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aidb version %s\n", aidb.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
