package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of laeportal",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("laeportal %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
