// =============================================================================
// EMV QR Payload Toolkit - Version Command
// =============================================================================
//
// COMMAND USAGE:
//   emvqr version
//
// OUTPUT:
//   EMV QR Payload Toolkit
//   Version:    1.0.0
//   Build Date: 2026-01-01
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X 'github.com/mono57/emvqr/cmd.Version=1.0.0' -X 'github.com/mono57/emvqr/cmd.BuildDate=2026-01-01'"
var (
	// Version is the application version.
	Version = "1.0.0"

	// BuildDate is the date the application was built.
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "EMV QR Payload Toolkit")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
