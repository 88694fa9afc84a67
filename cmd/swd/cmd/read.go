package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <address> [count]",
	Short: "Read 32-bit words from target memory",
	Long: `Read one or more consecutive 32-bit words from target memory through the
AHB access port. The address must be word aligned.

Examples:
  swd read 0x20000000             # Read one word of SRAM
  swd read 0x1FFF0000 16          # Dump 16 words
  swd read --probe rpio 0x40048024`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	addr, err := parseWord(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	if addr%4 != 0 {
		return fmt.Errorf("address 0x%08X is not word aligned", addr)
	}

	count := 1
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 1 {
			return fmt.Errorf("invalid count %q", args[1])
		}
	}

	link, closer, err := openLink()
	if err != nil {
		return err
	}
	defer closer()

	words := make([]uint32, count)
	if err := link.MemLoadMulti(addr, words); err != nil {
		return fmt.Errorf("memory read failed: %w", err)
	}

	for i, word := range words {
		fmt.Printf("0x%08X: 0x%08X\n", addr+uint32(4*i), word)
	}

	return nil
}

// parseWord parses a 32-bit value in any base strconv accepts (0x.., 0.., decimal).
func parseWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
