package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mono57/emvqr/pkg/emvqr"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <payload>",
	Short: "Check a payload's checksum",
	Long:  `Verify prints "valid" or "invalid" and exits with status 1 when the checksum does not match.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !emvqr.Verify(args[0]) {
			fmt.Fprintln(cmd.OutOrStdout(), "invalid")
			return errInvalidPayload
		}
		fmt.Fprintln(cmd.OutOrStdout(), "valid")
		return nil
	},
}

var crcCmd = &cobra.Command{
	Use:   "crc <text>",
	Short: "Print the CRC-16 checksum of text",
	Long: `Crc prints the four-digit CRC-16/CCITT-FALSE checksum of its argument.
For a payload body, include the trailing "6304" checksum tag and length.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), emvqr.Checksum(args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(crcCmd)
}
