// =============================================================================
// EMV QR Payload Toolkit - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (emvqr)
//   ├── encodeCmd  (emvqr encode)
//   ├── decodeCmd  (emvqr decode)
//   ├── verifyCmd  (emvqr verify)
//   ├── crcCmd     (emvqr crc)
//   ├── inspectCmd (emvqr inspect)
//   ├── processCmd (emvqr process)
//   └── versionCmd (emvqr version)
//
// CONFIGURATION:
//   Before any command runs, the root command
//   1. loads the configuration file (--config, default emvqr.yaml)
//   2. builds the logger (log_backend, log_level, EMVQR_LOG_LEVEL, --verbose)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mono57/emvqr/internal/config"
	"github.com/mono57/emvqr/internal/logging"
	"github.com/mono57/emvqr/pkg/emvqr"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is used when --config is not given. It may be absent.
const defaultConfigFile = "emvqr.yaml"

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// verbose forces debug logging.
	verbose bool

	// logBackend overrides log_backend from the configuration.
	logBackend string
)

// Set by PersistentPreRunE.
var (
	cfg     *config.Config
	logger  logging.Logger = logging.NopLogger{}
	codec   *emvqr.Codec   = emvqr.New()
	logFile io.Closer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "emvqr",
	Short: "EMV QR payload toolkit - encode, decode and verify merchant QR payloads",
	Long: `emvqr builds and reads the text payload carried by EMV merchant-presented
QR codes: tag-length-value records closed by a CRC-16 checksum.

Key Features:
  - Encode from raw tag ids ("59") or friendly names ("merchant_name")
  - Decode to JSON, YAML, TOML, MessagePack or CBOR
  - Record-level inspection of malformed payloads
  - Batch generation from CSV and XLSX merchant lists

Example Usage:
  emvqr encode --set merchant_name=Shop --set merchant_city=Paris --set currency=EUR
  emvqr decode 0002015904Shop6304E90D
  emvqr process --config ./emvqr.yaml`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file (.yaml, .yml or .toml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logBackend,
		"log-backend",
		"",
		"Logging backend: zap, logrus or zerolog (overrides log_backend)",
	)
}

// setup loads the configuration and builds the logger and codec. A missing
// default configuration file is not an error; a missing file named with
// --config is.
func setup(cmd *cobra.Command) error {
	required := cmd.Flags().Changed("config")

	loaded, err := config.LoadOrDefault(cfgFile, required)
	if err != nil {
		return err
	}
	if logBackend != "" {
		loaded.LogBackend = logBackend
	}

	var out io.Writer = cmd.ErrOrStderr()
	if loaded.LogFile != "" {
		f, err := os.OpenFile(loaded.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		logFile = f
	}

	l, err := logging.New(logging.Options{
		Backend: loaded.LogBackend,
		Level:   logging.ResolveLevel(loaded.LogLevel, verbose),
		Output:  out,
	})
	if err != nil {
		return err
	}

	cfg = loaded
	logger = l
	codec = emvqr.New(emvqr.WithLogger(l))

	logger.Debug("configuration loaded", logging.Fields{"config": cfgFile, "backend": loaded.LogBackend})
	return nil
}

// errInvalidPayload is returned by commands that fail on a bad checksum.
var errInvalidPayload = errors.New("payload checksum is invalid")
