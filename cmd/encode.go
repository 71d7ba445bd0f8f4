package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mono57/emvqr/internal/writer"
)

var (
	encodeSet         []string
	encodeInputFormat string
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a field map as a payload",
	Long: `Encode reads a flat field map and prints the payload.

The map comes from a JSON, YAML or TOML file (chosen by extension, or by
--input-format), from standard input when the file is "-" or omitted, and
from --set key=value flags, which override file values. Keys are raw tag ids
("59") or friendly names ("merchant_name"); friendly maps are detected
automatically.

Examples:
  emvqr encode merchant.yaml
  emvqr encode --set 59=Shop --set 60=Paris --set 53=978 --set 58=FR --set 52=5411
  echo '{"merchant_name":"Shop","currency":"EUR"}' | emvqr encode`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := readEncodeInput(cmd, args)
		if err != nil {
			return err
		}

		payload, err := codec.Encode(fields)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), payload)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringArrayVar(&encodeSet, "set", nil, "Field assignment key=value (repeatable)")
	encodeCmd.Flags().StringVar(&encodeInputFormat, "input-format", "", "Input format: json, yaml or toml (default: from extension)")
}

// readEncodeInput merges the file or stdin map with --set assignments.
// Standard input is only read when no file is named and no --set is given.
func readEncodeInput(cmd *cobra.Command, args []string) (map[string]string, error) {
	sets, err := writer.ParseAssignments(encodeSet)
	if err != nil {
		return nil, err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	} else if len(sets) > 0 {
		return sets, nil
	}

	var data []byte
	if source == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read field map: %w", err)
	}

	format := writer.InputFormat(source)
	if encodeInputFormat != "" {
		if format, err = writer.ParseFormat(encodeInputFormat); err != nil {
			return nil, err
		}
	}

	fields, err := writer.ReadFieldMap(data, format)
	if err != nil {
		return nil, err
	}
	for k, v := range sets {
		fields[k] = v
	}
	return fields, nil
}
