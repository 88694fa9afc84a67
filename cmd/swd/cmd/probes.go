package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
	"github.com/spf13/cobra"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List available debug probes",
	Long: `Scan the host for SWD-capable debug probes (CMSIS-DAP and compatible) and
print a summary of the detected transports. Use this to verify connectivity or
select a probe before launching other commands.`,
	RunE: runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

func runProbes(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := swd.DiscoverProbes(ctx)
	if err != nil {
		return fmt.Errorf("discover probes: %w", err)
	}

	fmt.Println("Detected debug probes:")
	for _, entry := range entries {
		fmt.Printf("  - %s [%s] (VID:PID %04X:%04X)\n", entry.Label(), entry.Kind, entry.VendorID, entry.ProductID)
	}

	return nil
}
