package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var writeCmd = &cobra.Command{
	Use:   "write <address> <word>...",
	Short: "Write 32-bit words to target memory",
	Long: `Write one or more consecutive 32-bit words to target memory through the
AHB access port. The address must be word aligned; additional words go to the
following addresses.

Examples:
  swd write 0x20000000 0xDEADBEEF
  swd write 0x20000000 0x01 0x02 0x03 0x04`,
	Args: cobra.MinimumNArgs(2),
	RunE: runWrite,
}

func init() {
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	addr, err := parseWord(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	if addr%4 != 0 {
		return fmt.Errorf("address 0x%08X is not word aligned", addr)
	}

	words := make([]uint32, 0, len(args)-1)
	for _, arg := range args[1:] {
		word, err := parseWord(arg)
		if err != nil {
			return fmt.Errorf("invalid word %q: %w", arg, err)
		}
		words = append(words, word)
	}

	link, closer, err := openLink()
	if err != nil {
		return err
	}
	defer closer()

	if err := link.MemStoreMulti(addr, words); err != nil {
		return fmt.Errorf("memory write failed: %w", err)
	}

	fmt.Printf("Wrote %d word(s) at 0x%08X\n", len(words), addr)
	return nil
}
