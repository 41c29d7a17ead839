// Command laeportal serves the LAE transport portal: the shared map with
// animated vehicle markers, the passenger view and the operations view.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "laeportal",
	Short: "Low-altitude transport portal",
	Long: `laeportal serves the low-altitude economy portal. Passengers see
stations, services and their trips; operators see flights, incidents,
infrastructure and demand. Both share a live map where each vehicle
shuttles along its route.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "laeportal.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
