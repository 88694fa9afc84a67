package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	// Global flags
	verbose bool
	trace   bool
)

var rootCmd = &cobra.Command{
	Use:   "swd",
	Short: "ARM Serial Wire Debug probe tool",
	Long: `A Serial Wire Debug (SWD) tool for talking to ARM Cortex-M debug ports:
bring up the debug link, identify the processor, and read or write target
memory through the AHB access port.

Examples:
  swd probes                                  # List connected debug probes
  swd info --probe simulator                  # Identify the target processor
  swd read --probe simulator 0x20000000 4     # Read 4 words of target memory
  swd write --probe simulator 0x20000000 0xDEADBEEF`,
	Version: "0.9.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logrus.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp: true,
		})
		switch {
		case trace:
			logrus.SetLevel(logrus.TraceLevel)
		case verbose:
			logrus.SetLevel(logrus.InfoLevel)
		default:
			logrus.SetLevel(logrus.ErrorLevel)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "log every wire transaction")
}
