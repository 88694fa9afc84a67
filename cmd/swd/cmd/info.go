package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Identify the target processor",
	Long: `Bring up the SWD link and decode the debug port identification register.

The info command will:
  1. Reset the wire protocol and switch the port from JTAG to SWD
  2. Read and decode the identification register
  3. Power up the debug domain and verify the AHB access port

Examples:
  swd info --probe simulator
  swd info --probe cmsisdap --vid 0x2E8A --pid 0x000C
  swd info --probe rpio --clock-pin 25 --data-pin 24`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	link, closer, err := openLink()
	if err != nil {
		return err
	}
	defer closer()

	id := idcode.ParseDPIDR(link.IDCode())
	designer, _ := idcode.LookupManufacturer(id.Designer)

	fmt.Println("Debug Port Information")
	fmt.Printf("  IDCODE:      0x%08X\n", id.Raw)
	fmt.Printf("  Designer:    %s (0x%03X)\n", designer.Name, id.Designer)
	fmt.Printf("  Part Number: 0x%02X\n", id.PartNumber)
	fmt.Printf("  Version:     %d\n", id.Version)
	fmt.Printf("  Revision:    %d\n", id.Revision)
	if id.Min {
		fmt.Println("  Minimal debug port (no pushed operations)")
	}

	return nil
}
