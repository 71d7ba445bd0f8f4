package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mono57/emvqr/internal/logging"
	"github.com/mono57/emvqr/internal/tlv"
	"github.com/mono57/emvqr/internal/writer"
)

var (
	decodeView   string
	decodeFormat string
	decodeOut    string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <payload>",
	Short: "Decode a payload into a field map",
	Long: `Decode checks the payload checksum and prints its fields.

Views:
  raw       every tag keyed by id, in payload order
  friendly  known tags renamed (53 -> currency, numeric code -> alpha code),
            unknown tags keep their id (default)
  named     only the tags that have a friendly name

Formats: json (default), yaml, toml, msgpack, cbor. Binary formats are best
written with --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := writer.ParseFormat(decodeFormat)
		if err != nil {
			return err
		}

		fields, err := decodeWithView(args[0], decodeView)
		if err != nil {
			return err
		}

		out, err := writer.Marshal(fields, format)
		if err != nil {
			return fmt.Errorf("failed to encode %s output: %w", format, err)
		}

		if decodeOut != "" {
			if err := os.WriteFile(decodeOut, out, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			logger.Info("wrote decoded fields", logging.Fields{"path": decodeOut, "format": string(format)})
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVar(&decodeView, "view", "friendly", "Field view: raw, friendly or named")
	decodeCmd.Flags().StringVar(&decodeFormat, "format", "json", "Output format: json, yaml, toml, msgpack or cbor")
	decodeCmd.Flags().StringVarP(&decodeOut, "out", "o", "", "Write to this file instead of standard output")
}

func decodeWithView(payload, view string) (*tlv.Fields, error) {
	switch view {
	case "raw":
		return codec.DecodeRaw(payload)
	case "friendly", "":
		return codec.DecodeFriendly(payload)
	case "named":
		return codec.Decode(payload)
	default:
		return nil, fmt.Errorf("unknown view %q, want raw, friendly or named", view)
	}
}
