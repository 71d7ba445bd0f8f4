// =============================================================================
// EMV QR Payload Toolkit - Main Entry Point
// =============================================================================
//
// USAGE:
//   emvqr encode    - Build a payload from a field map
//   emvqr decode    - Print the fields of a payload
//   emvqr verify    - Check a payload checksum
//   emvqr inspect   - List the records of a payload
//   emvqr process   - Generate payloads for merchant record files
//   emvqr version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : codec, batch pipeline and supporting packages
//   - pkg/emvqr  : the importable codec API
//   - pkg/utils  : file handling for the batch pipeline
//
// =============================================================================

package main

import (
	"github.com/mono57/emvqr/cmd"
)

func main() {
	cmd.Execute()
}
